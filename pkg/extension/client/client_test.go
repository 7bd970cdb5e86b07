package client

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/extkit/extkit/pkg/extension/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoExtension = `#!/bin/sh
if [ $# -eq 0 ]; then
  echo '{"title":"Echo","commands":[{"name":"items","title":"Items","mode":"filter"},{"name":"quiet","title":"Quiet","mode":"silent"},{"name":"page","title":"Page","mode":"detail"}]}'
  exit 0
fi
case "$1" in
  *'"command":"items"'*)
    echo "serving items" >&2
    echo '{"items":[{"title":"hello","actions":[{"type":"copy","title":"Copy","text":"hello"}]}]}'
    ;;
  *'"command":"quiet"'*)
    ;;
  *'"command":"page"'*)
    echo '{"text":"# Hello","actions":[{"type":"open","title":"Open","url":"https://example.com/hello"}]}'
    ;;
  *'"command":"garbage"'*)
    echo 'not json'
    ;;
  *)
    echo "unknown command" >&2
    exit 3
    ;;
esac
`

func writeExtension(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ext")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func request(command string) *protocol.Request {
	return &protocol.Request{Command: command, Cwd: "/", Preferences: protocol.Values{}, Params: protocol.Values{}}
}

func TestClient_Describe(t *testing.T) {
	c := New(Options{BinaryPath: writeExtension(t, echoExtension)})

	m, err := c.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Echo", m.Title)
	require.Len(t, m.Commands, 3)
	assert.Equal(t, protocol.ModeSilent, m.Commands[1].Mode)
}

func TestClient_Describe_InvalidManifest(t *testing.T) {
	c := New(Options{BinaryPath: writeExtension(t, "#!/bin/sh\necho '{\"title\":\"\",\"commands\":[]}'\n")})

	_, err := c.Describe(context.Background())
	assert.ErrorContains(t, err, "printed an invalid manifest")
}

func TestClient_List(t *testing.T) {
	var stderr bytes.Buffer
	c := New(Options{BinaryPath: writeExtension(t, echoExtension), Stderr: &stderr})

	list, err := c.List(context.Background(), request("items"))
	require.NoError(t, err)

	require.Len(t, list.Items, 1)
	assert.Equal(t, "hello", list.Items[0].Title)
	assert.Equal(t, []protocol.Action{protocol.CopyAction{Title: "Copy", Text: "hello"}}, list.Items[0].Actions)
	assert.Contains(t, stderr.String(), "serving items")
}

func TestClient_Detail(t *testing.T) {
	tt := map[string]struct {
		command   string
		expected  *protocol.Detail
		expectErr string
	}{
		"detail command": {
			command: "page",
			expected: &protocol.Detail{
				Text:    "# Hello",
				Actions: []protocol.Action{protocol.OpenAction{Title: "Open", URL: "https://example.com/hello"}},
			},
		},
		"silent command has no detail": {
			command:   "quiet",
			expectErr: `command "quiet" printed no response`,
		},
		"invalid json output": {
			command:   "garbage",
			expectErr: "printed invalid JSON",
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			c := New(Options{BinaryPath: writeExtension(t, echoExtension)})

			detail, err := c.Detail(context.Background(), request(tc.command))
			if tc.expectErr != "" {
				assert.ErrorContains(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, detail)
		})
	}
}

func TestClient_Execute(t *testing.T) {
	tt := map[string]struct {
		command  string
		checkErr func(t *testing.T, err error)
	}{
		"silent command prints nothing": {
			command: "quiet",
		},
		"unknown command exits non-zero": {
			command: "bogus",
			checkErr: func(t *testing.T, err error) {
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, 3, exitErr.Code)
				assert.Equal(t, "unknown command", exitErr.Stderr)
			},
		},
		"invalid json output": {
			command: "garbage",
			checkErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "printed invalid JSON")
			},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			c := New(Options{BinaryPath: writeExtension(t, echoExtension)})

			raw, err := c.Execute(context.Background(), request(tc.command))
			if tc.checkErr != nil {
				require.Error(t, err)
				tc.checkErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, raw)
		})
	}
}

func TestClient_MissingBinary(t *testing.T) {
	c := New(Options{BinaryPath: filepath.Join(t.TempDir(), "missing")})

	_, err := c.Describe(context.Background())
	assert.ErrorContains(t, err, "failed to run extension")
}
