package domain

// Outcome is the binary result of a risk evaluation.
type Outcome int

const (
	NoRisk  Outcome = 0
	HasRisk Outcome = 1
)

// User-facing result messages. Page styling keys off Prediction.HasRisk,
// but the phrases themselves are part of the public contract.
const (
	MessageHasRisk = "Patient has stroke risk"
	MessageNoRisk  = "Congratulations, patient does not have stroke risk"
)

// Message returns the user-facing text for the outcome.
func (o Outcome) Message() string {
	if o == HasRisk {
		return MessageHasRisk
	}
	return MessageNoRisk
}

func (o Outcome) String() string {
	if o == HasRisk {
		return "risk"
	}
	return "no_risk"
}

// Prediction is the per-request evaluation result. It is never persisted.
type Prediction struct {
	Outcome  Outcome  `json:"-"`
	HasRisk  bool     `json:"has_risk"`
	Message  string   `json:"message"`
	Strategy string   `json:"strategy"`
	Score    *int     `json:"score,omitempty"`
	Factors  []string `json:"factors,omitempty"`
}

// NewPrediction builds a Prediction for the given outcome and strategy name.
func NewPrediction(outcome Outcome, strategy string) Prediction {
	return Prediction{
		Outcome:  outcome,
		HasRisk:  outcome == HasRisk,
		Message:  outcome.Message(),
		Strategy: strategy,
	}
}
