package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransport_RoundTrip(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		code       string
	}{
		{"OK", http.StatusOK, "200"},
		{"Not Found", http.StatusNotFound, "404"},
		{"Bad Gateway", http.StatusBadGateway, "502"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
			}))
			defer server.Close()

			client := &http.Client{Transport: NewTransport(nil, m)}
			resp, err := client.Get(server.URL)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, tc.statusCode, resp.StatusCode)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues(tc.code)))
			assert.Equal(t, 1, testutil.CollectAndCount(m.upstreamDuration))
			assert.Equal(t, 0.0, testutil.ToFloat64(m.upstreamErrors))
		})
	}
}

func TestTransport_Error(t *testing.T) {
	m := New()
	client := &http.Client{Transport: NewTransport(failingTransport{}, m)}

	_, err := client.Get("http://127.0.0.1/api/counter")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamErrors))
	assert.Equal(t, 0, testutil.CollectAndCount(m.upstreamRequests))
}

func TestHandlerExposesRenders(t *testing.T) {
	m := New()
	m.PageRendered(ResultOK)
	m.PageRendered(ResultOK)
	m.PageRendered(ResultFallback)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `counterpage_page_renders_total{result="ok"} 2`))
	assert.True(t, strings.Contains(string(body), `counterpage_page_renders_total{result="fallback"} 1`))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveUpstream(0, http.StatusOK)
	m.UpstreamError()
	m.PageRendered(ResultOK)
}
