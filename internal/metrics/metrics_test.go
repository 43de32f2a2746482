package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/raysh454/phishscan/internal/metrics"
	"github.com/raysh454/phishscan/internal/model"
)

func newCollector(t *testing.T) *metrics.Collector {
	t.Helper()
	c, err := metrics.New()
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	return c
}

func TestNew_IndependentRegistries(t *testing.T) {
	t.Parallel()
	a := newCollector(t)
	b := newCollector(t)
	if a.Registry() == b.Registry() {
		t.Fatal("collectors must not share a registry")
	}
}

func TestCollector_Observations(t *testing.T) {
	t.Parallel()
	c := newCollector(t)

	c.ObserveStage(model.StateScored, 2*time.Millisecond, false)
	c.ObserveStage(model.StateFingerprinted, time.Second, true)
	c.ObserveOutcome(model.StateAssembled, "")
	c.ObserveOutcome(model.StateRejected, "ssrf_risk")
	c.ObserveOutcome(model.StateRejected, "ssrf_risk")
	c.ObserveEnrichment([]model.EnrichmentResult{
		model.Unavailable(model.ProviderShodan, "credential not configured"),
		model.Success(model.ProviderVirusTotal, []byte(`{}`)),
	})
	c.ObserveFavicon("absent")

	reg := c.Registry()
	if n, err := promtest.GatherAndCount(reg, "phishscan_analyses_total"); err != nil || n != 2 {
		t.Errorf("analyses_total series = %d (%v), want 2", n, err)
	}

	expected := `
# HELP phishscan_rejections_total Rejected analyses by reason
# TYPE phishscan_rejections_total counter
phishscan_rejections_total{reason="ssrf_risk"} 2
`
	if err := promtest.GatherAndCompare(reg, strings.NewReader(expected), "phishscan_rejections_total"); err != nil {
		t.Errorf("rejections_total: %v", err)
	}

	expected = `
# HELP phishscan_stage_errors_total Non-terminal stage errors
# TYPE phishscan_stage_errors_total counter
phishscan_stage_errors_total{stage="fingerprinted"} 1
`
	if err := promtest.GatherAndCompare(reg, strings.NewReader(expected), "phishscan_stage_errors_total"); err != nil {
		t.Errorf("stage_errors_total: %v", err)
	}

	if n, err := promtest.GatherAndCount(reg, "phishscan_enrichment_total"); err != nil || n != 2 {
		t.Errorf("enrichment_total series = %d (%v), want 2", n, err)
	}
	if n, err := promtest.GatherAndCount(reg, "phishscan_stage_duration_seconds"); err != nil || n != 2 {
		t.Errorf("stage_duration_seconds series = %d (%v), want 2", n, err)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	t.Parallel()
	var c *metrics.Collector
	c.ObserveStage(model.StateScored, time.Millisecond, true)
	c.ObserveOutcome(model.StateRejected, "invalid_input")
	c.ObserveEnrichment(nil)
	c.ObserveFavicon("found")
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()
	c := newCollector(t)
	c.ObserveOutcome(model.StateAssembled, "")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `phishscan_analyses_total{outcome="assembled"} 1`) {
		t.Errorf("metrics output missing analyses counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected runtime collectors")
	}
}
