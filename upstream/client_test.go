package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafbgarcia/counterpage/internal/conventions"
)

// recordingTransport captures the request target instead of dialing.
type recordingTransport struct {
	url string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.url = req.URL.String()
	return nil, errors.New("not dialing")
}

func counterServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/counter" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := counterServer(t, http.StatusOK, `{"counter": 42}`+"\n")

	c, err := New(srv.URL)
	require.NoError(t, err)

	got, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", got.Value.String())
}

func TestFetchKeepsNumberLiteral(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"counter": 0}`, "0"},
		{`{"counter": -1}`, "-1"},
		{`{"counter": 1.5}`, "1.5"},
		{`{"counter": 12345678901234567890}`, "12345678901234567890"},
		{`{"counter": 7, "hostname": "api-1"}`, "7"},
	}
	for _, tt := range tests {
		srv := counterServer(t, http.StatusOK, tt.body)
		c, err := New(srv.URL)
		require.NoError(t, err)

		got, err := c.Fetch(context.Background())
		require.NoError(t, err, tt.body)
		assert.Equal(t, tt.want, got.Value.String(), tt.body)
	}
}

func TestFetchTarget(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{"http://api.internal:9090", "http://api.internal:9090/api/counter"},
		{"", "http://127.0.0.1/api/counter"},
		{conventions.LegacyOrigin, "http://127.0.0.1:80/api/counter"},
	}
	for _, tt := range tests {
		rt := &recordingTransport{}
		c, err := New(tt.origin, WithHTTPClient(&http.Client{Transport: rt}))
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.URL())

		_, err = c.Fetch(context.Background())
		require.Error(t, err)
		assert.Equal(t, tt.want, rt.url)
	}
}

func TestFetchNotJSON(t *testing.T) {
	for _, body := range []string{
		"<html>oops</html>",
		`{"counter": 1} x`,
		`{"counter": 2}{"counter": 3}`,
		`{"counter": 4`,
		"",
	} {
		srv := counterServer(t, http.StatusOK, body)
		c, err := New(srv.URL)
		require.NoError(t, err)

		got, err := c.Fetch(context.Background())
		require.Error(t, err, body)
		assert.ErrorIs(t, err, ErrDecode, body)
		assert.Empty(t, got.Value, body)
	}
}

func TestFetchMissingCounter(t *testing.T) {
	for _, body := range []string{`{}`, `{"count": 3}`, `{"counter": null}`, `null`} {
		srv := counterServer(t, http.StatusOK, body)
		c, err := New(srv.URL)
		require.NoError(t, err)

		_, err = c.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrMissingCounter, body)
	}
}

func TestFetchWrongType(t *testing.T) {
	for _, body := range []string{`{"counter": "many"}`, `{"counter": ""}`, `{"counter": true}`, `[1]`} {
		srv := counterServer(t, http.StatusOK, body)
		c, err := New(srv.URL)
		require.NoError(t, err)

		_, err = c.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrDecode, body)
	}
}

func TestFetchStatus(t *testing.T) {
	srv := counterServer(t, http.StatusServiceUnavailable, `{"counter": 1}`)
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, srv.URL+"/api/counter", statusErr.URL)
}

func TestFetchUnreachable(t *testing.T) {
	srv := counterServer(t, http.StatusOK, `{"counter": 1}`)
	origin := srv.URL
	srv.Close()

	c, err := New(origin)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrMissingCounter)
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(srv.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetchCanceledContext(t *testing.T) {
	srv := counterServer(t, http.StatusOK, `{"counter": 1}`)
	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewInvalidOrigin(t *testing.T) {
	_, err := New("api.internal:9090")
	assert.Error(t, err)
}
