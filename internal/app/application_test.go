package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/config"
	"github.com/raysh454/phishscan/internal/enrich"
	"github.com/raysh454/phishscan/internal/history"
	"github.com/raysh454/phishscan/internal/model"
	"github.com/raysh454/phishscan/internal/testutil"
)

// testConfig keeps every outbound attempt short. 203.0.113.0/24 is public
// to the guard but unroutable, so target fetches fail fast.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timeouts.Fetch = "50ms"
	cfg.Timeouts.Provider = "2s"
	cfg.Timeouts.Request = "5s"
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	return cfg
}

func newApp(t *testing.T, cfg *config.Config, opts ...app.Option) *app.Application {
	t.Helper()
	a, err := app.New(cfg, &testutil.DummyLogger{}, opts...)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// ─── Construction ───

func TestNew_RequiresConfigAndLogger(t *testing.T) {
	t.Parallel()

	if _, err := app.New(nil, &testutil.DummyLogger{}); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := app.New(config.DefaultConfig(), nil); err == nil {
		t.Error("expected error for nil logger")
	}
}

func TestNew_HistoryDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.History.Enabled = false
	a := newApp(t, cfg)
	if a.History != nil {
		t.Error("History should be nil when disabled")
	}
	if a.Metrics == nil || a.Analyzer == nil {
		t.Error("metrics and analyzer must always be built")
	}
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig(t))
	if err := a.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// ─── Analyze ───

func TestAnalyze_RejectionNotRecorded(t *testing.T) {
	t.Parallel()

	resolver := &testutil.DummyResolver{Addrs: map[string][]string{"intranet.test": {"10.0.0.5"}}}
	a := newApp(t, testConfig(t), app.WithResolver(resolver))

	_, err := a.Analyze(context.Background(), "intranet.test", nil)
	if !errors.Is(err, model.ErrSSRFRisk) {
		t.Fatalf("err = %v, want ErrSSRFRisk", err)
	}

	rows, err := a.History.List(context.Background(), history.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rejected analysis was recorded: %+v", rows)
	}
}

func TestAnalyze_NoCredentialsRecordsResult(t *testing.T) {
	t.Parallel()

	var events atomic.Int32
	a := newApp(t, testConfig(t), app.WithTransitionObserver(func(model.StageEvent) { events.Add(1) }))

	res, err := a.Analyze(context.Background(), "http://203.0.113.10/login", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Favicon != nil {
		t.Errorf("unexpected favicon %+v", res.Favicon)
	}
	for _, provider := range []string{model.ProviderShodan, model.ProviderVirusTotal} {
		e, ok := res.EnrichmentFor(provider)
		if !ok {
			t.Fatalf("missing %s result", provider)
		}
		if e.Status != model.EnrichmentUnavailable || e.Reason != enrich.ReasonNoCredential {
			t.Errorf("%s = %+v, want unavailable/no credential", provider, e)
		}
	}
	if events.Load() == 0 {
		t.Error("global transition observer never called")
	}

	stored, err := a.History.Get(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("History.Get: %v", err)
	}
	if stored.Target != res.Target {
		t.Errorf("stored target = %q, want %q", stored.Target, res.Target)
	}
}

func TestAnalyze_ProviderClientReachesLoopback(t *testing.T) {
	t.Parallel()

	vt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v3/urls":
			_, _ = w.Write([]byte(`{"data":{"id":"u-1"}}`))
		case "/api/v3/analyses/u-1":
			_, _ = w.Write([]byte(`{"data":{"attributes":{"status":"queued"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(vt.Close)

	cfg := testConfig(t)
	cfg.Providers.VirusTotal.APIKey = "vt-key"
	cfg.Providers.VirusTotal.BaseURL = vt.URL
	cfg.Providers.Shodan.APIKey = "shodan-key"
	a := newApp(t, cfg)

	res, err := a.Analyze(context.Background(), "http://203.0.113.10/", nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	got, _ := res.EnrichmentFor(model.ProviderVirusTotal)
	if got.Status != model.EnrichmentSuccess {
		t.Fatalf("virustotal = %+v, want success", got)
	}
	shodan, _ := res.EnrichmentFor(model.ProviderShodan)
	if shodan.Status != model.EnrichmentUnavailable || shodan.Reason != enrich.ReasonNoFingerprint {
		t.Errorf("shodan = %+v, want unavailable/no fingerprint", shodan)
	}
}
