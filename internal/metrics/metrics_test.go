package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveInvocation(t *testing.T) {
	m := New()

	m.ObserveInvocation("cos_ListBuckets", OutcomeOK, 200, 10*time.Millisecond)
	m.ObserveInvocation("cos_ListBuckets", OutcomeOK, 403, 10*time.Millisecond)
	m.ObserveInvocation("cos_ListBuckets", OutcomeUpstream, 0, time.Second)
	m.ObserveInvocation("missing", OutcomeNotFound, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocationsTotal.WithLabelValues("cos_ListBuckets", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocationsTotal.WithLabelValues("cos_ListBuckets", OutcomeUpstream)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocationsTotal.WithLabelValues("missing", OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamStatus.WithLabelValues("cos_ListBuckets", "403")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.upstreamStatus.WithLabelValues("missing", "0")))
}

func TestObserveSourceLoadAndRegistrySize(t *testing.T) {
	m := New()
	m.ObserveSourceLoad("watsonx-ai", nil)
	m.ObserveSourceLoad("watsonx-ai", errors.New("boom"))
	m.SetRegistryTools(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourceLoads.WithLabelValues("watsonx-ai", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourceLoads.WithLabelValues("watsonx-ai", "error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.registryTools))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("GET", "/tools", 200)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `toolproxy_http_requests_total{method="GET",path="/tools",status="200"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveInvocation("t", OutcomeOK, 200, time.Second)
		m.ObserveSourceLoad("s", nil)
		m.SetRegistryTools(1)
		m.ObserveHTTPRequest("GET", "/", 200)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
