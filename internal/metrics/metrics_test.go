package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpdate("message")
	c.RecordUpdate("message")
	c.RecordUpdate("callback")
	c.RecordRequestSubmitted("leave")
	c.RecordDecision("approve")
	c.RecordDeliveryFailure("admin")
	c.RecordVolunteerRegistration("duplicate")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.updates.WithLabelValues("message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.updates.WithLabelValues("callback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.submitted.WithLabelValues("leave")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.decisions.WithLabelValues("approve")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.deliveryErr.WithLabelValues("admin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.volunteers.WithLabelValues("duplicate")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRequestSubmitted("feedback")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `hrbot_requests_submitted_total{type="feedback"} 1`)
}
