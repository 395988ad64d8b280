package metric

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("cloudsave", "open", OutcomeOK, 10*time.Millisecond)
	m.ObserveOperation("cloudsave", "open", OutcomeOK, 20*time.Millisecond)
	m.ObserveOperation("cloudsave", "open", OutcomeTimeout, time.Second)

	if got := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("cloudsave", "open", OutcomeOK)); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("cloudsave", "open", OutcomeTimeout)); got != 1 {
		t.Errorf("timeout count = %v, want 1", got)
	}
}

func TestSubsystemRecorder(t *testing.T) {
	m := New()
	r := m.Subsystem("achievements")

	r.PendingChanged("unlock", 1)
	r.PendingChanged("unlock", 1)
	r.PendingChanged("unlock", -1)
	r.CompletionReplaced("unlock")

	if got := testutil.ToFloat64(m.PendingOperations.WithLabelValues("achievements", "unlock")); got != 1 {
		t.Errorf("pending = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ReplacedTotal.WithLabelValues("achievements", "unlock")); got != 1 {
		t.Errorf("replaced = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	m.ObserveOperation("auth", "sign_in", OutcomeError, time.Millisecond)
	m.ObserveConflict("UseLocal", "timeout")
	m.SetQueueDepth(3)
	m.IncDispatchPanics()
	m.AddEventsFlushed(2)
	m.Subsystem("auth").PendingChanged("sign_in", 1)
	m.Subsystem("auth").Operation("sign_in", OutcomeOK, 0)

	if m.Registry() != nil {
		t.Error("nil metrics should have nil registry")
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveConflict("UseServer", "timeout")
	m.SetQueueDepth(4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`gamesvc_cloudsave_conflict_resolutions_total{source="timeout",strategy="UseServer"} 1`,
		"gamesvc_dispatch_queue_depth 4",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
