package analyzer

import (
	"context"
	"time"

	"github.com/raysh454/phishscan/internal/assessor"
	"github.com/raysh454/phishscan/internal/metrics"
	"github.com/raysh454/phishscan/internal/model"
)

const DefaultRequestTimeout = 30 * time.Second

type Guard interface {
	Check(ctx context.Context, target *model.NormalizedURL) (model.SSRFVerdict, error)
}

type Fingerprinter interface {
	Fingerprint(ctx context.Context, target *model.NormalizedURL) (*model.FaviconFingerprint, error)
}

type Enricher interface {
	Enrich(ctx context.Context, target *model.NormalizedURL, fp *model.FaviconFingerprint) []model.EnrichmentResult
}

// Deps are the stage implementations. All are required.
type Deps struct {
	Guard         Guard
	Scorer        assessor.Assessor
	Fingerprinter Fingerprinter
	Enricher      Enricher
}

type Options struct {
	// RequestTimeout bounds a whole analysis. Zero selects DefaultRequestTimeout.
	RequestTimeout time.Duration

	// OnTransition is called synchronously for every state change.
	OnTransition func(model.StageEvent)

	// Metrics may be nil.
	Metrics *metrics.Collector

	// NewID overrides analysis id generation, mainly for tests.
	NewID func() string
}
