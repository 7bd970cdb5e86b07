package sdk

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var levelColors = map[string]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed, color.Bold),
}

// logger writes one line per entry to the invocation's stderr. stdout is
// reserved for the manifest or response document.
type logger struct {
	mu    sync.Mutex
	w     io.Writer
	debug bool
}

func newLogger(w io.Writer, debug bool) *logger {
	return &logger{w: w, debug: debug}
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func loggerFrom(ctx context.Context) *logger {
	if l, ok := ctx.Value(loggerKey{}).(*logger); ok {
		return l
	}
	return newLogger(os.Stderr, os.Getenv(EnvDebug) != "")
}

func (l *logger) log(level, message string, data map[string]any) error {
	if level == LevelDebug && !l.debug {
		return nil
	}

	var b strings.Builder
	prefix := "[" + level + "]"
	if c, ok := levelColors[level]; ok {
		prefix = c.Sprint(prefix)
	}
	b.WriteString(prefix)
	b.WriteByte(' ')
	b.WriteString(message)
	for _, k := range slices.Sorted(maps.Keys(data)) {
		fmt.Fprintf(&b, " %s=%v", k, data[k])
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := io.WriteString(l.w, b.String())
	return err
}

// Log writes a log entry to stderr.
func (e *Extension) Log(ctx context.Context, level, message string, data map[string]any) error {
	return loggerFrom(ctx).log(level, message, data)
}

// LogDebug writes a debug entry, shown only when debug logging is enabled.
func (e *Extension) LogDebug(ctx context.Context, message string, data map[string]any) error {
	return e.Log(ctx, LevelDebug, message, data)
}

// LogInfo writes an info entry.
func (e *Extension) LogInfo(ctx context.Context, message string, data map[string]any) error {
	return e.Log(ctx, LevelInfo, message, data)
}

// LogWarn writes a warning entry.
func (e *Extension) LogWarn(ctx context.Context, message string, data map[string]any) error {
	return e.Log(ctx, LevelWarn, message, data)
}

// LogError writes an error entry.
func (e *Extension) LogError(ctx context.Context, message string, data map[string]any) error {
	return e.Log(ctx, LevelError, message, data)
}
