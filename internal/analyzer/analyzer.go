// Package analyzer sequences one URL analysis through the pipeline states
// received, normalized, guarded, scored, fingerprinted, enriched and
// assembled. Only normalization and the SSRF guard can reject a request;
// later stages record their own errors and the pipeline carries on.
package analyzer

import (
	"context"

	"github.com/raysh454/phishscan/internal/model"
)

// Analyzer is the entry point used by the HTTP server and the CLI.
type Analyzer interface {
	// Analyze returns either an assembled result or a *model.RejectionError.
	Analyze(ctx context.Context, raw string) (*model.AnalysisResult, error)

	// AnalyzeObserved is Analyze with a per-call transition observer that
	// runs in addition to Options.OnTransition.
	AnalyzeObserved(ctx context.Context, raw string, observe func(model.StageEvent)) (*model.AnalysisResult, error)
}
