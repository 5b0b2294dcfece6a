package service

import (
	"context"
	"io"
	"log/slog"
	"net/url"

	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/attaboy/strokecheck/internal/form"
	"github.com/attaboy/strokecheck/internal/infra"
	"github.com/attaboy/strokecheck/internal/risk"
)

// PredictionService turns submitted forms into risk predictions.
type PredictionService struct {
	evaluator risk.Evaluator
	parser    *form.Parser
	audit     auditor
	metrics   *infra.Metrics
	logger    *slog.Logger
}

// NewPredictionService creates a new PredictionService.
func NewPredictionService(
	evaluator risk.Evaluator,
	parser *form.Parser,
	events EventPublisher,
	metrics *infra.Metrics,
	logger *slog.Logger,
) *PredictionService {
	return &PredictionService{
		evaluator: evaluator,
		parser:    parser,
		audit:     auditor{events: events, metrics: metrics, logger: logger},
		metrics:   metrics,
		logger:    logger,
	}
}

// Strategy names the active evaluator.
func (s *PredictionService) Strategy() string { return s.evaluator.Name() }

// PredictForm decodes a posted prediction form and evaluates it.
func (s *PredictionService) PredictForm(ctx context.Context, username string, values url.Values) (domain.Prediction, error) {
	f, err := s.parser.Parse(values)
	if err != nil {
		s.metrics.PredictionErrors.WithLabelValues("validation").Inc()
		return domain.Prediction{}, err
	}
	return s.Evaluate(ctx, username, f)
}

// PredictJSON decodes a JSON prediction request and evaluates it.
func (s *PredictionService) PredictJSON(ctx context.Context, username string, body io.Reader) (domain.Prediction, error) {
	f, err := s.parser.ParseJSON(body)
	if err != nil {
		s.metrics.PredictionErrors.WithLabelValues("validation").Inc()
		return domain.Prediction{}, err
	}
	return s.Evaluate(ctx, username, f)
}

// Evaluate runs the active evaluator on f. Rule-based evaluators also
// report their score and contributing factors.
func (s *PredictionService) Evaluate(ctx context.Context, username string, f domain.PatientFeatures) (domain.Prediction, error) {
	outcome, err := s.evaluator.Predict(f)
	if err != nil {
		s.metrics.PredictionErrors.WithLabelValues("evaluator").Inc()
		s.logger.Error("evaluation failed", "strategy", s.evaluator.Name(), "error", err)
		return domain.Prediction{}, domain.ErrInternal("evaluation failed", err)
	}

	p := domain.NewPrediction(outcome, s.evaluator.Name())
	if ex, ok := s.evaluator.(risk.Explainer); ok {
		score := ex.Explain(f)
		total := score.Total
		p.Score = &total
		p.Factors = score.Factors
	}

	s.metrics.Predictions.WithLabelValues(p.Strategy, outcome.String()).Inc()
	s.logger.Debug("prediction evaluated", "username", username, "strategy", p.Strategy, "has_risk", p.HasRisk)
	s.audit.record(ctx, domain.NewPredictionEvent(username, p))
	return p, nil
}
