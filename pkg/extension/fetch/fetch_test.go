package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name string `json:"name"`
}

func TestClient_GetJSON(t *testing.T) {
	tt := map[string]struct {
		status   int
		body     string
		expected doc
		checkErr func(t *testing.T, err error)
	}{
		"ok": {
			status:   http.StatusOK,
			body:     `{"name":"css"}`,
			expected: doc{Name: "css"},
		},
		"redirect range is not an error": {
			status:   http.StatusNotModified,
			body:     ``,
			checkErr: func(t *testing.T, err error) { assert.ErrorContains(t, err, "failed to decode") },
		},
		"not found": {
			status: http.StatusNotFound,
			body:   `{}`,
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		"server error": {
			status: http.StatusInternalServerError,
			body:   `oops`,
			checkErr: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
			},
		},
		"malformed body": {
			status: http.StatusOK,
			body:   `{"name":`,
			checkErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "failed to decode")
			},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			var got doc
			err := GetJSON(context.Background(), NewClient(Options{}), srv.URL+"/docs.json", &got)
			if tc.checkErr != nil {
				require.Error(t, err)
				tc.checkErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClient_Get_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Options{Timeout: 50 * time.Millisecond})
	_, err := c.Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Get_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Options{}).Get(context.Background(), url)
	assert.ErrorContains(t, err, "failed to make http request")
}

func TestClient_Get_Body(t *testing.T) {
	tt := map[string]struct {
		body      string
		limit     int64
		expectErr error
	}{
		"html body is returned as is": {
			body: "<h1>fmt</h1>",
		},
		"body at the limit": {
			body:  "12345",
			limit: 5,
		},
		"body over the limit": {
			body:      "123456",
			limit:     5,
			expectErr: ErrBodyTooLarge,
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			body, err := NewClient(Options{MaxBodySize: tc.limit}).Get(context.Background(), srv.URL)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.body, string(body))
		})
	}
}

func TestOnce(t *testing.T) {
	calls := 0
	f := Once(FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		calls++
		return []byte(`{"name":"a"}`), nil
	}))

	var got doc
	require.NoError(t, GetJSON(context.Background(), f, "http://a", &got))
	assert.Equal(t, doc{Name: "a"}, got)

	_, err := f.Get(context.Background(), "http://b")
	assert.ErrorIs(t, err, ErrReadLimit)
	assert.Equal(t, 1, calls)
}
