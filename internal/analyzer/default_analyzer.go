package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/model"
	"github.com/raysh454/phishscan/internal/utils"
)

// DefaultAnalyzer holds only read-only collaborators; every call builds
// its own run state, so concurrent analyses share nothing mutable.
type DefaultAnalyzer struct {
	deps   Deps
	opts   Options
	logger logging.Logger
}

func NewDefaultAnalyzer(deps Deps, opts Options, logger logging.Logger) (*DefaultAnalyzer, error) {
	if logger == nil {
		return nil, errors.New("analyzer: nil logger")
	}
	var missing []string
	if deps.Guard == nil {
		missing = append(missing, "guard")
	}
	if deps.Scorer == nil {
		missing = append(missing, "scorer")
	}
	if deps.Fingerprinter == nil {
		missing = append(missing, "fingerprinter")
	}
	if deps.Enricher == nil {
		missing = append(missing, "enricher")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("analyzer: missing dependencies: %s", strings.Join(missing, ", "))
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &DefaultAnalyzer{
		deps:   deps,
		opts:   opts,
		logger: logger.With(logging.Field{Key: "component", Value: "analyzer"}),
	}, nil
}

func (a *DefaultAnalyzer) Analyze(ctx context.Context, raw string) (*model.AnalysisResult, error) {
	return a.AnalyzeObserved(ctx, raw, nil)
}

func (a *DefaultAnalyzer) AnalyzeObserved(ctx context.Context, raw string, observe func(model.StageEvent)) (*model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.opts.RequestTimeout)
	defer cancel()

	r := &run{
		id:        a.opts.NewID(),
		state:     model.StateReceived,
		started:   time.Now(),
		observers: []func(model.StageEvent){a.opts.OnTransition, observe},
		a:         a,
	}
	r.stageStart = r.started
	r.stages = []model.State{model.StateReceived}
	log := a.logger.With(logging.Field{Key: "analysis_id", Value: r.id})

	// ── gate 1: normalization ──────────────────────────────────────────
	target, err := utils.NormalizeTarget(raw)
	if err != nil {
		return nil, r.reject(log, &model.RejectionError{
			State:  model.StateReceived,
			Reason: err.Error(),
			Err:    model.ErrInvalidInput,
		})
	}
	r.advance(model.StateNormalized, "")

	// ── gate 2: SSRF guard ─────────────────────────────────────────────
	verdict, err := a.deps.Guard.Check(ctx, target)
	if err != nil || !verdict.Allowed {
		return nil, r.reject(log, guardRejection(verdict, err))
	}
	r.advance(model.StateGuarded, "")

	// ── best-effort stages ─────────────────────────────────────────────
	result := &model.AnalysisResult{
		ID:         r.id,
		Target:     target.String(),
		Heuristics: []string{},
		StartedAt:  r.started,
	}

	var report model.HeuristicReport
	if err := isolate(model.StateScored, func() error {
		report = a.deps.Scorer.ScoreURL(ctx, target)
		return nil
	}); err != nil {
		report = model.HeuristicReport{Err: model.NewStageError(string(model.StateScored), err)}
	}
	if report.Findings != nil {
		result.Heuristics = append([]string(nil), report.Findings...)
	}
	result.HeuristicsError = report.Err
	r.advance(model.StateScored, stageMessage(report.Err))

	var fp *model.FaviconFingerprint
	fpErr := isolate(model.StateFingerprinted, func() error {
		var err error
		fp, err = a.deps.Fingerprinter.Fingerprint(ctx, target)
		return err
	})
	switch {
	case fpErr != nil:
		fp = nil
		result.FaviconError = model.NewStageError(string(model.StateFingerprinted), fpErr)
		a.opts.Metrics.ObserveFavicon("error")
	case fp == nil:
		a.opts.Metrics.ObserveFavicon("absent")
	default:
		result.Favicon = cloneFingerprint(fp)
		a.opts.Metrics.ObserveFavicon("found")
	}
	r.advance(model.StateFingerprinted, stageMessage(result.FaviconError))

	var enrichment []model.EnrichmentResult
	if err := isolate(model.StateEnriched, func() error {
		enrichment = a.deps.Enricher.Enrich(ctx, target, cloneFingerprint(result.Favicon))
		return nil
	}); err != nil {
		enrichment = []model.EnrichmentResult{
			model.Failed(model.ProviderShodan, err),
			model.Failed(model.ProviderVirusTotal, err),
		}
	}
	result.Enrichment = append([]model.EnrichmentResult(nil), enrichment...)
	a.opts.Metrics.ObserveEnrichment(result.Enrichment)
	r.advance(model.StateEnriched, enrichmentMessage(result.Enrichment))

	// ── assemble ───────────────────────────────────────────────────────
	r.advance(model.StateAssembled, "")
	result.StagesRun = append([]model.State(nil), r.stages...)
	result.CompletedAt = time.Now()
	a.opts.Metrics.ObserveOutcome(model.StateAssembled, "")

	log.Info("analysis assembled",
		logging.Field{Key: "target", Value: result.Target},
		logging.Field{Key: "findings", Value: len(result.Heuristics)},
		logging.Field{Key: "favicon", Value: result.Favicon != nil},
		logging.Field{Key: "elapsed", Value: result.CompletedAt.Sub(result.StartedAt).String()})
	return result, nil
}

// run is the per-analysis state. It never outlives one AnalyzeObserved call.
type run struct {
	id         string
	state      model.State
	started    time.Time
	stageStart time.Time
	stages     []model.State
	observers  []func(model.StageEvent)
	a          *DefaultAnalyzer
}

func (r *run) advance(to model.State, stageErr string) {
	now := time.Now()
	ev := model.StageEvent{
		AnalysisID: r.id,
		From:       r.state,
		To:         to,
		Error:      stageErr,
		Elapsed:    now.Sub(r.stageStart),
		At:         now,
	}
	r.a.opts.Metrics.ObserveStage(to, ev.Elapsed, stageErr != "")
	r.state = to
	r.stageStart = now
	if to != model.StateRejected {
		r.stages = append(r.stages, to)
	}
	for _, fn := range r.observers {
		r.notify(fn, ev)
	}
}

func (r *run) notify(fn func(model.StageEvent), ev model.StageEvent) {
	if fn == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.a.logger.Error("transition observer panicked",
				logging.Field{Key: "analysis_id", Value: r.id},
				logging.Field{Key: "panic", Value: fmt.Sprint(p)})
		}
	}()
	fn(ev)
}

func (r *run) reject(log logging.Logger, rej *model.RejectionError) error {
	r.advance(model.StateRejected, rej.Error())
	r.a.opts.Metrics.ObserveOutcome(model.StateRejected, reasonLabel(rej.Err))
	log.Warn("analysis rejected",
		logging.Field{Key: "state", Value: string(rej.State)},
		logging.Field{Key: "reason", Value: rej.Reason})
	return rej
}

// guardRejection maps a guard outcome onto the rejection taxonomy.
func guardRejection(verdict model.SSRFVerdict, err error) *model.RejectionError {
	rej := &model.RejectionError{State: model.StateNormalized, Reason: verdict.Reason}
	switch {
	case errors.Is(err, model.ErrSSRFRisk):
		rej.Err = model.ErrSSRFRisk
	case errors.Is(err, model.ErrResolutionFailed):
		rej.Err = model.ErrResolutionFailed
	case err != nil:
		rej.Err = model.ErrResolutionFailed
	default:
		rej.Err = model.ErrSSRFRisk
	}
	if rej.Reason == "" && err != nil {
		rej.Reason = err.Error()
	}
	return rej
}

func reasonLabel(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, model.ErrSSRFRisk):
		return "ssrf_risk"
	case errors.Is(err, model.ErrResolutionFailed):
		return "resolution_failed"
	}
	return "unknown"
}

// isolate runs fn, converting a panic into an error.
func isolate(stage model.State, fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("stage %q panicked: %v", stage, p)
		}
	}()
	return fn()
}

func cloneFingerprint(fp *model.FaviconFingerprint) *model.FaviconFingerprint {
	if fp == nil {
		return nil
	}
	c := *fp
	return &c
}

func stageMessage(e *model.StageError) string {
	if e == nil {
		return ""
	}
	return e.Message
}

func enrichmentMessage(results []model.EnrichmentResult) string {
	var failed []string
	for _, e := range results {
		if e.Status == model.EnrichmentError {
			failed = append(failed, e.Provider+": "+e.Error)
		}
	}
	return strings.Join(failed, "; ")
}
