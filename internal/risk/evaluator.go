// Package risk implements the two stroke-risk strategies: a fixed point
// rubric and a pre-trained random forest.
package risk

import (
	"fmt"

	"github.com/attaboy/strokecheck/internal/domain"
)

// Strategy names accepted by New.
const (
	StrategyRules  = "rules"
	StrategyForest = "forest"
)

// Evaluator turns patient features into a binary outcome.
type Evaluator interface {
	Name() string
	Predict(f domain.PatientFeatures) (domain.Outcome, error)
}

// Explainer is implemented by evaluators that can report how they scored.
type Explainer interface {
	Explain(f domain.PatientFeatures) RuleScore
}

// New returns the evaluator for strategy. modelPath is only read for the
// forest strategy; a missing or invalid artifact is returned as an error.
func New(strategy, modelPath string) (Evaluator, error) {
	switch strategy {
	case StrategyRules:
		return NewRuleEvaluator(), nil
	case StrategyForest:
		forest, err := LoadForest(modelPath)
		if err != nil {
			return nil, fmt.Errorf("load model %s: %w", modelPath, err)
		}
		return NewForestEvaluator(forest), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s", strategy)
	}
}
