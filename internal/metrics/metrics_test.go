package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/clients", "200"))
	RecordHTTPRequest("GET", "/api/clients", http.StatusOK, 3*time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/clients", "200"))
	require.Equal(t, before+1, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	IDsIssued.WithLabelValues("CLI").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `crmdesk_ids_issued_total{prefix="CLI"}`)
	require.Contains(t, rec.Body.String(), "crmdesk_http_inflight_requests")
}

func TestRecordHTTPRequest_ObservesDuration(t *testing.T) {
	RecordHTTPRequest("POST", "/api/invoices", http.StatusCreated, 1500*time.Microsecond)

	families, err := Registry.Gather()
	require.NoError(t, err)

	var histogram *dto.Histogram
	for _, mf := range families {
		if mf.GetName() != "crmdesk_http_request_duration_seconds" {
			continue
		}
		require.Equal(t, dto.MetricType_HISTOGRAM, mf.GetType())
		for _, m := range mf.GetMetric() {
			if labelValue(m, "route") == "/api/invoices" && labelValue(m, "method") == "POST" {
				histogram = m.GetHistogram()
			}
		}
	}
	require.NotNil(t, histogram)
	require.GreaterOrEqual(t, histogram.GetSampleCount(), uint64(1))
	require.Greater(t, histogram.GetSampleSum(), 0.0)
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
