package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/extkit/extkit/pkg/extension/fetch"
	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name string `json:"name"`
}

func testManifest() protocol.Manifest {
	return protocol.Manifest{
		Title: "Records",
		Preferences: []protocol.Input{
			{Type: protocol.InputString, Name: "region", Title: "Region"},
		},
		Commands: []protocol.Command{
			{Name: "list", Title: "List records", Mode: protocol.ModeFilter},
			{Name: "find", Title: "Find records", Mode: protocol.ModeSearch},
			{
				Name:   "show",
				Title:  "Show record",
				Mode:   protocol.ModeDetail,
				Params: []protocol.Input{{Type: protocol.InputString, Name: "name", Title: "Name"}},
			},
			{Name: "ping", Title: "Ping", Mode: protocol.ModeSilent},
		},
	}
}

func fakeFetcher(records []record, calls *int) fetch.Fetcher {
	return fetch.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		*calls++
		return json.Marshal(records)
	})
}

func newTestExtension(calls *int) *Extension {
	ext := NewExtension(testManifest(), WithFetcher(fakeFetcher([]record{{Name: "a"}, {Name: "b"}}, calls)))

	ext.AddCommand("list", func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
		var records []record
		if err := fetch.GetJSON(ctx, req.Fetcher, "http://records/list", &records); err != nil {
			return nil, err
		}
		return MapList(records, func(r record) protocol.ListItem {
			return protocol.ListItem{Title: r.Name}
		}), nil
	})

	ext.AddCommand("find", func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
		return &protocol.List{Items: []protocol.ListItem{{Title: "query=" + *req.Query}}}, nil
	})

	ext.AddCommand("show", func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
		params, err := DecodeParams[struct {
			Name string `json:"name"`
		}](req)
		if err != nil {
			return nil, err
		}
		prefs, err := DecodePreferences[map[string]string](req)
		if err != nil {
			return nil, err
		}
		return NewDetail(params.Name + "@" + prefs["region"]), nil
	})

	ext.AddCommand("ping", func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
		return nil, nil
	})

	return ext
}

func run(t *testing.T, ext *Extension, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := ext.Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExtension_Run_Describe(t *testing.T) {
	calls := 0
	ext := newTestExtension(&calls)

	code, first, _ := run(t, ext)
	require.Equal(t, ExitOK, code)

	var m protocol.Manifest
	require.NoError(t, json.Unmarshal([]byte(first), &m))
	assert.Equal(t, testManifest(), m)

	_, _, _ = run(t, ext, `{"command":"list","cwd":"/","preferences":{"region":"eu"},"params":{}}`)

	code, second, _ := run(t, ext)
	require.Equal(t, ExitOK, code)
	assert.Equal(t, first, second, "describe output must not depend on prior invocations")
}

func TestExtension_Run_Execute(t *testing.T) {
	tt := map[string]struct {
		arg      string
		code     int
		expected string
		stderr   string
	}{
		"filter command fetches once": {
			arg:      `{"command":"list","cwd":"/","preferences":{"region":"eu"},"params":{}}`,
			code:     ExitOK,
			expected: `{"items":[{"title":"a","actions":[]},{"title":"b","actions":[]}]}`,
		},
		"search command sees query": {
			arg:      `{"command":"find","cwd":"/","preferences":{"region":"eu"},"params":{},"query":"x"}`,
			code:     ExitOK,
			expected: `{"items":[{"title":"query=x","actions":[]}]}`,
		},
		"detail command decodes params and preferences": {
			arg:      `{"command":"show","cwd":"/","preferences":{"region":"eu"},"params":{"name":"a"}}`,
			code:     ExitOK,
			expected: `{"text":"a@eu"}`,
		},
		"silent command prints nothing": {
			arg:  `{"command":"ping","cwd":"/","preferences":{"region":"eu"},"params":{}}`,
			code: ExitOK,
		},
		"unknown command": {
			arg:    `{"command":"bogus","cwd":"/tmp","preferences":{},"params":{}}`,
			code:   ExitFailure,
			stderr: `unknown command: "bogus"`,
		},
		"malformed json": {
			arg:    `{"command":`,
			code:   ExitFailure,
			stderr: "invalid request",
		},
		"query on filter command": {
			arg:    `{"command":"list","cwd":"/","preferences":{"region":"eu"},"params":{},"query":"x"}`,
			code:   ExitFailure,
			stderr: `invalid request for command "list"`,
		},
		"missing preference": {
			arg:    `{"command":"list","cwd":"/","preferences":{},"params":{}}`,
			code:   ExitFailure,
			stderr: `invalid request for command "list"`,
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			calls := 0
			code, stdout, stderr := run(t, newTestExtension(&calls), tc.arg)

			assert.Equal(t, tc.code, code)
			if tc.expected != "" {
				assert.JSONEq(t, tc.expected, stdout)
			} else {
				assert.Empty(t, stdout)
			}
			if tc.stderr != "" {
				assert.Contains(t, stderr, tc.stderr)
			}
			assert.LessOrEqual(t, calls, 1)
		})
	}
}

func TestExtension_Run_Usage(t *testing.T) {
	calls := 0
	code, stdout, stderr := run(t, newTestExtension(&calls), "{}", "{}")

	assert.Equal(t, ExitUsage, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "usage:")
}

func TestExtension_Run_HandlerFailure(t *testing.T) {
	tt := map[string]struct {
		handler CommandHandler
		stderr  string
	}{
		"handler error": {
			handler: func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
				return nil, errors.New("collaborator unavailable")
			},
			stderr: "collaborator unavailable",
		},
		"second fetch is refused": {
			handler: func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
				var out []record
				if err := fetch.GetJSON(ctx, req.Fetcher, "http://one", &out); err != nil {
					return nil, err
				}
				if err := fetch.GetJSON(ctx, req.Fetcher, "http://two", &out); err != nil {
					return nil, err
				}
				return &protocol.List{}, nil
			},
			stderr: "outbound read limit reached",
		},
		"wrong response kind": {
			handler: func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
				return NewDetail("not a list"), nil
			},
			stderr: "must return a list",
		},
		"nil list": {
			handler: func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
				return nil, nil
			},
			stderr: "must return a list",
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			calls := 0
			ext := newTestExtension(&calls)
			ext.AddCommand("list", tc.handler)

			code, stdout, stderr := run(t, ext, `{"command":"list","cwd":"/","preferences":{"region":"eu"},"params":{}}`)

			assert.Equal(t, ExitFailure, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tc.stderr)
		})
	}
}

func TestExtension_Run_MissingHandler(t *testing.T) {
	ext := NewExtension(testManifest())

	code, stdout, stderr := run(t, ext, `{"command":"ping","cwd":"/","preferences":{"region":"eu"},"params":{}}`)

	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `no handler registered for command "ping"`)
}

func TestExtension_Run_InvalidExtension(t *testing.T) {
	tt := map[string]struct {
		ext    func() *Extension
		stderr string
	}{
		"invalid manifest": {
			ext: func() *Extension {
				return NewExtension(protocol.Manifest{Title: "Empty"})
			},
			stderr: "at least one command is required",
		},
		"handler for undeclared command": {
			ext: func() *Extension {
				ext := NewExtension(testManifest())
				ext.AddCommand("extra", func(ctx context.Context, req *CommandRequest) (protocol.Response, error) {
					return nil, nil
				})
				return ext
			},
			stderr: `handler registered for undeclared command "extra"`,
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			code, stdout, stderr := run(t, tc.ext())

			assert.Equal(t, ExitFailure, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tc.stderr)
		})
	}
}

func TestExtension_Log(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	tt := map[string]struct {
		debug    bool
		expected []string
		absent   []string
	}{
		"debug disabled": {
			debug:    false,
			expected: []string{"[info] hello count=2 name=x"},
			absent:   []string{"[debug]"},
		},
		"debug enabled": {
			debug:    true,
			expected: []string{"[debug] details", "[info] hello count=2 name=x"},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := withLogger(context.Background(), newLogger(&buf, tc.debug))
			ext := NewExtension(testManifest())

			require.NoError(t, ext.LogDebug(ctx, "details", nil))
			require.NoError(t, ext.LogInfo(ctx, "hello", map[string]any{"name": "x", "count": 2}))

			for _, s := range tc.expected {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tc.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
