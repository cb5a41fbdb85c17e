package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder_WorkflowCounters(t *testing.T) {
	r := NewRecorder()
	r.BootstrapAttempt("created")
	r.RequestSubmitted("pending")
	r.RequestReviewed("approve", "approved")
	r.RequestReviewed("approve", "approved")
	r.OrphanedRolesCleaned(3)
	r.NotificationFailed("approval_email")

	out := scrape(t, r)
	assert.Contains(t, out, `complaintdesk_admin_bootstrap_attempts_total{outcome="created"} 1`)
	assert.Contains(t, out, `complaintdesk_admin_requests_submitted_total{outcome="pending"} 1`)
	assert.Contains(t, out, `complaintdesk_admin_requests_reviewed_total{action="approve",outcome="approved"} 2`)
	assert.Contains(t, out, `complaintdesk_orphaned_admin_roles_cleaned_total 3`)
	assert.Contains(t, out, `complaintdesk_notification_failures_total{kind="approval_email"} 1`)
}

func TestRecorder_InstrumentUsesRouteTemplate(t *testing.T) {
	r := NewRecorder()
	router := mux.NewRouter()
	router.Use(r.Instrument)
	router.HandleFunc("/v1/admin/requests/{id}/review", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}).Methods(http.MethodPost)

	for _, id := range []string{"a", "b"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/admin/requests/"+id+"/review", nil))
	}

	out := scrape(t, r)
	assert.Contains(t, out, `complaintdesk_http_requests_total{method="POST",route="/v1/admin/requests/{id}/review",status="409"} 2`)
	assert.NotContains(t, out, `/v1/admin/requests/a/review`)
}
