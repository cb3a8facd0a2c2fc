package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRecompute(t *testing.T) {
	okBefore := testutil.ToFloat64(balanceRecomputes.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(balanceRecomputes.WithLabelValues("error"))

	ObserveRecompute(3, nil)
	ObserveRecompute(0, errors.New("boom"))

	if got := testutil.ToFloat64(balanceRecomputes.WithLabelValues("ok")); got != okBefore+1 {
		t.Errorf("expected ok counter %v, got %v", okBefore+1, got)
	}
	if got := testutil.ToFloat64(balanceRecomputes.WithLabelValues("error")); got != errBefore+1 {
		t.Errorf("expected error counter %v, got %v", errBefore+1, got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest("GET", "/api/health", 200, 5*time.Millisecond)
	ObserveSettlementPlan("preview", 2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"splitease_http_requests_total", "splitease_settlement_plans_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
