// Package enrich runs the optional threat-intelligence lookups for an
// analysis. Each provider succeeds or fails on its own.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/model"
	"github.com/raysh454/phishscan/internal/providers"
)

const DefaultProviderTimeout = 10 * time.Second

const (
	ReasonNoCredential  = "credential not configured"
	ReasonNoFingerprint = "no favicon fingerprint"
)

type Config struct {
	ProviderTimeout time.Duration
}

// Orchestrator dispatches the enabled providers concurrently. A nil
// provider means its credential is not configured.
type Orchestrator struct {
	hosts      providers.HostSearcher
	reputation providers.URLReputation
	timeout    time.Duration
	logger     logging.Logger
}

func New(cfg Config, hosts providers.HostSearcher, reputation providers.URLReputation, logger logging.Logger) (*Orchestrator, error) {
	if logger == nil {
		return nil, errors.New("enrich: nil logger")
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultProviderTimeout
	}
	return &Orchestrator{
		hosts:      hosts,
		reputation: reputation,
		timeout:    cfg.ProviderTimeout,
		logger:     logger.With(logging.Field{Key: "component", Value: "enrich"}),
	}, nil
}

// Enrich always returns one result per provider, in the order
// [shodan, virustotal], after every dispatched lookup has finished.
func (o *Orchestrator) Enrich(ctx context.Context, target *model.NormalizedURL, fp *model.FaviconFingerprint) []model.EnrichmentResult {
	results := []model.EnrichmentResult{
		model.Unavailable(model.ProviderShodan, ReasonNoCredential),
		model.Unavailable(model.ProviderVirusTotal, ReasonNoCredential),
	}

	var wg conc.WaitGroup
	switch {
	case o.hosts == nil:
	case fp == nil || fp.Hash == "":
		results[0] = model.Unavailable(model.ProviderShodan, ReasonNoFingerprint)
	default:
		hash := fp.Hash
		wg.Go(func() {
			results[0] = o.run(ctx, model.ProviderShodan, func(ctx context.Context) (model.EnrichmentResult, error) {
				payload, err := o.hosts.SearchFaviconHash(ctx, hash)
				return model.Success(model.ProviderShodan, payload), err
			})
		})
	}

	if o.reputation != nil && target != nil {
		targetURL := target.String()
		wg.Go(func() {
			results[1] = o.run(ctx, model.ProviderVirusTotal, func(ctx context.Context) (model.EnrichmentResult, error) {
				id, err := o.reputation.Submit(ctx, targetURL)
				if err != nil {
					return model.EnrichmentResult{}, fmt.Errorf("submit: %w", err)
				}
				payload, err := o.reputation.FetchAnalysis(ctx, id)
				if err != nil {
					return model.EnrichmentResult{}, fmt.Errorf("fetch analysis %s: %w", id, err)
				}
				return model.Success(model.ProviderVirusTotal, payload), nil
			})
		})
	}

	wg.Wait()
	return results
}

// run executes one provider lookup under its own timeout. Errors and
// panics become that provider's Error result.
func (o *Orchestrator) run(ctx context.Context, provider string, call func(context.Context) (model.EnrichmentResult, error)) (res model.EnrichmentResult) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = model.Failed(provider, fmt.Errorf("provider panicked: %v", r))
		}
		fields := []logging.Field{
			{Key: "provider", Value: provider},
			{Key: "status", Value: string(res.Status)},
			{Key: "elapsed", Value: time.Since(start).String()},
		}
		if res.Status == model.EnrichmentError {
			o.logger.Warn("enrichment failed", append(fields, logging.Field{Key: "error", Value: res.Error})...)
			return
		}
		o.logger.Debug("enrichment complete", fields...)
	}()

	res, err := call(callCtx)
	if err != nil {
		return model.Failed(provider, err)
	}
	return res
}
