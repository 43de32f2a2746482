package assessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/model"
)

// HeuristicsAssessor applies the URL rules in a fixed order. It holds no
// per-request state and is safe for concurrent use.
type HeuristicsAssessor struct {
	cfg    *Config
	logger logging.Logger
	rules  []rule
}

// NewHeuristicsAssessor constructs the assessor. A nil cfg selects DefaultConfig.
func NewHeuristicsAssessor(cfg *Config, logger logging.Logger) (*HeuristicsAssessor, error) {
	if logger == nil {
		return nil, errors.New("assessor: nil logger; please pass a valid logging.Logger")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := logger.With(logging.Field{Key: "component", Value: "heuristics-assessor"})
	l.Debug("heuristics assessor constructed",
		logging.Field{Key: "rules", Value: len(defaultRules)},
		logging.Field{Key: "keywords", Value: len(cfg.Keywords)})

	return &HeuristicsAssessor{cfg: cfg, logger: l, rules: defaultRules}, nil
}

// ScoreURL evaluates every rule against target. A failing rule empties the
// findings and is reported in the returned report's Err.
func (h *HeuristicsAssessor) ScoreURL(ctx context.Context, target *model.NormalizedURL) (report model.HeuristicReport) {
	report.Findings = []string{}
	if target == nil {
		report.Err = &model.StageError{Stage: string(model.StateScored), Message: "nil target"}
		return report
	}

	var current string
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("heuristic rule panicked",
				logging.Field{Key: "rule", Value: current},
				logging.Field{Key: "panic", Value: fmt.Sprint(r)})
			report = model.HeuristicReport{
				Findings: []string{},
				Err:      &model.StageError{Stage: string(model.StateScored), Message: fmt.Sprintf("rule %s: %v", current, r)},
			}
		}
	}()

	for _, r := range h.rules {
		current = r.id
		report.Findings = r.eval(h.cfg, target, report.Findings)
	}

	h.logger.Debug("scored url",
		logging.Field{Key: "url", Value: target.String()},
		logging.Field{Key: "findings", Value: len(report.Findings)})
	return report
}
