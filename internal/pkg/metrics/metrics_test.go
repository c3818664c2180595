package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTPRequest(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest(http.MethodPost, "/api/ai-analyze/search", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/ai-analyze/search", http.StatusOK, 30*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/ai-analyze/search", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodPost, "/api/ai-analyze/search", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodPost, "/api/ai-analyze/search", "400")))
}

func TestAddIngestedPoints(t *testing.T) {
	m := New()

	m.AddIngestedPoints("MindTrace-documents", 3)
	m.AddIngestedPoints("MindTrace-documents", 2)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.ingestedPoints.WithLabelValues("MindTrace-documents")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.AddIngestedPoints("docs", 1)

	observe := m.UpstreamObserver("openai")
	req := httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/embeddings", nil)
	observe(req, 0, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `mindtrace_ingested_points_total{collection="docs"} 1`))
	assert.True(t, strings.Contains(body, `mindtrace_upstream_request_duration_seconds_count{method="POST",status="error",upstream="openai"} 1`))
}
