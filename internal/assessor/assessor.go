package assessor

import (
	"context"

	"github.com/raysh454/phishscan/internal/model"
)

// Assessor scores a normalized URL on its structure alone. Implementations
// do NOT perform network I/O and never fail the pipeline: problems are
// reported through HeuristicReport.Err.
type Assessor interface {
	ScoreURL(ctx context.Context, target *model.NormalizedURL) model.HeuristicReport
}
