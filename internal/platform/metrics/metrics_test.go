package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequestCountsByRouteAndCode(t *testing.T) {
	m := New()
	m.ObserveRequest("contacts.detail", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("contacts.detail", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("contacts.detail", http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("contacts.detail", "200")); got != 2 {
		t.Fatalf("200 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("contacts.detail", "404")); got != 1 {
		t.Fatalf("404 count = %v, want 1", got)
	}
}

func TestCountersIgnoreNilReceiver(t *testing.T) {
	var m *Metrics
	m.IncContactsDeleted()
	m.AddDomainsImported(3)
	m.ObserveRequest("x", 200, 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.IncContactsDeleted()
	m.AddDomainsImported(4)
	m.AddDomainsImported(-1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "backoffice_records_contacts_deleted_total 1") {
		t.Fatalf("missing deleted counter in %q", body)
	}
	if !strings.Contains(body, "backoffice_records_domains_imported_total 4") {
		t.Fatalf("missing imported counter in %q", body)
	}
}
