package metrics

import (
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that times upstream requests and records
// them in Metrics.
type Transport struct {
	// Base executes the request. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	metrics *Metrics
}

// NewTransport wraps base so every round trip is recorded in m.
func NewTransport(base http.RoundTripper, m *Metrics) *Transport {
	return &Transport{Base: base, metrics: m}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		t.metrics.UpstreamError()
		return nil, err
	}
	t.metrics.ObserveUpstream(time.Since(start), resp.StatusCode)
	return resp, nil
}
