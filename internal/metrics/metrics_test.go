package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentHTTPUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHTTP)
	r.Get("/admin/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/admin/{id}", "204"))

	req := httptest.NewRequest(http.MethodGet, "/admin/652f1c2e9b1d8a0012345678", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/admin/{id}", "204"))
	if after-before != 1 {
		t.Fatalf("requests_total delta = %v, want 1", after-before)
	}
}

func TestRecordVerificationEmail(t *testing.T) {
	before := testutil.ToFloat64(verificationEmails.WithLabelValues("resend", "failed"))
	RecordVerificationEmail("resend", errors.New("smtp down"))
	after := testutil.ToFloat64(verificationEmails.WithLabelValues("resend", "failed"))
	if after-before != 1 {
		t.Fatalf("verification_emails_total delta = %v, want 1", after-before)
	}
}
