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

	"github.com/bimmerbailey/logshare/internal/redact"
)

func TestLogCreated(t *testing.T) {
	m := New()

	m.LogCreated("Docker", []redact.Hit{{Rule: "ipv4", Count: 2}, {Rule: "email", Count: 1}})
	m.LogCreated("Docker", nil)
	m.LogCreated("Python", []redact.Hit{{Rule: "ipv4", Count: 1}})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.logsCreated.WithLabelValues("Docker")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logsCreated.WithLabelValues("Python")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.redactions.WithLabelValues("ipv4")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redactions.WithLabelValues("email")))
}

func TestLogsExpiredAndScans(t *testing.T) {
	m := New()

	m.LogsExpired(3)
	m.ScanFindings([]string{"JWT", "Passwords"})
	m.ScanFindings([]string{"JWT"})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.logsExpired))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.scans.WithLabelValues("JWT")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordHTTPRequest(http.MethodGet, "GET /api/logs/{id}", http.StatusNotFound, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `logshare_http_requests_total{method="GET",route="GET /api/logs/{id}",status="404"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
