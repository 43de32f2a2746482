// Package app wires configuration into a ready-to-use analysis pipeline.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/phishscan/internal/analyzer"
	"github.com/raysh454/phishscan/internal/assessor"
	"github.com/raysh454/phishscan/internal/config"
	"github.com/raysh454/phishscan/internal/enrich"
	"github.com/raysh454/phishscan/internal/favicon"
	"github.com/raysh454/phishscan/internal/guard"
	"github.com/raysh454/phishscan/internal/history"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/metrics"
	"github.com/raysh454/phishscan/internal/model"
	"github.com/raysh454/phishscan/internal/providers"
	"github.com/raysh454/phishscan/internal/webclient"
)

// Application is the runtime state container shared by the HTTP server and
// the CLI. Build it once with New and release it with Close.
type Application struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *metrics.Collector

	Analyzer analyzer.Analyzer
	// History is nil when persistence is disabled.
	History *history.Store

	targetClient   *webclient.NetHTTPClient
	providerClient *webclient.NetHTTPClient
}

// Option customizes New.
type Option func(*options)

type options struct {
	resolver guard.Resolver
	observe  func(model.StageEvent)
}

// WithResolver replaces net.DefaultResolver for the SSRF guard.
func WithResolver(r guard.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithTransitionObserver registers a global observer for every analysis.
func WithTransitionObserver(fn func(model.StageEvent)) Option {
	return func(o *options) { o.observe = fn }
}

// New builds every component from cfg. A provider whose credential is
// empty is left out and reported as unavailable per analysis.
func New(cfg *config.Config, logger logging.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if logger == nil {
		return nil, errors.New("app: nil logger")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Application{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	var err error
	if a.Metrics, err = metrics.New(); err != nil {
		return nil, fmt.Errorf("new metrics: %w", err)
	}

	g := guard.New(guardConfig(cfg), o.resolver, logger)

	if a.targetClient, err = webclient.NewWebClient(targetClientConfig(cfg, g), logger); err != nil {
		return nil, fmt.Errorf("new target webclient: %w", err)
	}
	if a.providerClient, err = webclient.NewWebClient(providerClientConfig(cfg), logger); err != nil {
		return nil, fmt.Errorf("new provider webclient: %w", err)
	}

	scorer, err := assessor.NewHeuristicsAssessor(assessor.DefaultConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("new assessor: %w", err)
	}

	fp, err := favicon.New(faviconConfig(cfg), a.targetClient, logger)
	if err != nil {
		return nil, fmt.Errorf("new fingerprinter: %w", err)
	}

	// Interface values stay untyped nil when no key is set; a typed nil
	// pointer would look configured to the orchestrator.
	var hosts providers.HostSearcher
	if cfg.Providers.Shodan.APIKey != "" {
		s, err := providers.NewShodan(shodanConfig(cfg), a.providerClient, logger)
		if err != nil {
			return nil, fmt.Errorf("new shodan: %w", err)
		}
		hosts = s
	}
	var reputation providers.URLReputation
	if cfg.Providers.VirusTotal.APIKey != "" {
		vt, err := providers.NewVirusTotal(virusTotalConfig(cfg), a.providerClient, logger)
		if err != nil {
			return nil, fmt.Errorf("new virustotal: %w", err)
		}
		reputation = vt
	}

	enricher, err := enrich.New(enrichConfig(cfg), hosts, reputation, logger)
	if err != nil {
		return nil, fmt.Errorf("new enricher: %w", err)
	}

	a.Analyzer, err = analyzer.NewDefaultAnalyzer(analyzer.Deps{
		Guard:         g,
		Scorer:        scorer,
		Fingerprinter: fp,
		Enricher:      enricher,
	}, analyzer.Options{
		RequestTimeout: config.Duration(cfg.Timeouts.Request, analyzer.DefaultRequestTimeout),
		OnTransition:   o.observe,
		Metrics:        a.Metrics,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("new analyzer: %w", err)
	}

	if cfg.History.Enabled {
		if a.History, err = history.Open(cfg.History.Path, logger); err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	logger.Info("application ready",
		logging.Field{Key: "shodan", Value: hosts != nil},
		logging.Field{Key: "virustotal", Value: reputation != nil},
		logging.Field{Key: "history", Value: a.History != nil},
		logging.Field{Key: "enforce_on_dial", Value: cfg.Guard.EnforceOnDial})

	ok = true
	return a, nil
}

// Analyze runs one analysis and records assembled results in history.
// A history failure is logged and does not affect the returned result.
func (a *Application) Analyze(ctx context.Context, raw string, observe func(model.StageEvent)) (*model.AnalysisResult, error) {
	res, err := a.Analyzer.AnalyzeObserved(ctx, raw, observe)
	if err != nil {
		return nil, err
	}
	if a.History != nil {
		// Detached from ctx so a client that hung up still gets recorded.
		if err := a.History.Save(context.WithoutCancel(ctx), res); err != nil {
			a.Logger.Warn("failed to record analysis",
				logging.Field{Key: "analysis_id", Value: res.ID},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}
	return res, nil
}

// Close releases network and storage resources. It is safe to call on a
// partially built Application.
func (a *Application) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.targetClient != nil {
		if err := a.targetClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close target webclient: %w", err))
		}
	}
	if a.providerClient != nil {
		if err := a.providerClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close provider webclient: %w", err))
		}
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
		a.History = nil
	}
	return errors.Join(errs...)
}
