package http

import (
	"net/http"
	"time"
)

// ObserveFunc receives the outcome of every outbound round trip.
// status is 0 when the request failed before a response arrived.
type ObserveFunc func(req *http.Request, status int, elapsed time.Duration)

type observeTransport struct {
	observe   ObserveFunc
	transport http.RoundTripper
}

func (t *observeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.transport.RoundTrip(req)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	t.observe(req, status, time.Since(start))

	return resp, err
}

// WithRoundTripObserver reports each outbound call, e.g. to a latency histogram.
func WithRoundTripObserver(observe ObserveFunc) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		if observe == nil {
			return rt
		}
		return &observeTransport{
			observe:   observe,
			transport: rt,
		}
	})
}
