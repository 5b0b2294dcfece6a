package risk

import "github.com/attaboy/strokecheck/internal/domain"

// RuleThreshold is the minimum score classified as stroke risk.
const RuleThreshold = 5

// RuleScore is the breakdown of a rubric evaluation.
type RuleScore struct {
	Total   int      `json:"total"`
	Factors []string `json:"factors,omitempty"`
}

// Outcome applies RuleThreshold to the total.
func (s RuleScore) Outcome() domain.Outcome {
	if s.Total >= RuleThreshold {
		return domain.HasRisk
	}
	return domain.NoRisk
}

// Score evaluates the additive rubric. Age, glucose and BMI contribute only
// their highest matching bracket. Gender, marital status, work type and
// residence do not contribute.
func Score(f domain.PatientFeatures) RuleScore {
	var score int
	var factors []string

	if f.Age > 65 {
		score += 3
		factors = append(factors, "age_over_65")
	} else if f.Age > 45 {
		score += 2
		factors = append(factors, "age_over_45")
	} else if f.Age > 30 {
		score += 1
		factors = append(factors, "age_over_30")
	}

	if f.AvgGlucose > 200 {
		score += 3
		factors = append(factors, "glucose_over_200")
	} else if f.AvgGlucose > 140 {
		score += 2
		factors = append(factors, "glucose_over_140")
	} else if f.AvgGlucose > 100 {
		score += 1
		factors = append(factors, "glucose_over_100")
	}

	if f.BMI > 30 {
		score += 2
		factors = append(factors, "bmi_over_30")
	} else if f.BMI > 25 {
		score += 1
		factors = append(factors, "bmi_over_25")
	}

	if f.Hypertension != 0 {
		score += 2
		factors = append(factors, "hypertension")
	}
	if f.HeartDisease != 0 {
		score += 3
		factors = append(factors, "heart_disease")
	}

	if f.Smoking == domain.SmokingSmokes {
		score += 2
		factors = append(factors, "smokes")
	} else if f.Smoking == domain.SmokingFormerly {
		score += 1
		factors = append(factors, "formerly_smoked")
	}

	return RuleScore{Total: score, Factors: factors}
}

// RuleEvaluator classifies with the fixed point rubric.
type RuleEvaluator struct{}

// NewRuleEvaluator creates a RuleEvaluator.
func NewRuleEvaluator() *RuleEvaluator {
	return &RuleEvaluator{}
}

func (e *RuleEvaluator) Name() string { return StrategyRules }

// Predict returns HasRisk when the rubric total reaches RuleThreshold.
func (e *RuleEvaluator) Predict(f domain.PatientFeatures) (domain.Outcome, error) {
	return Score(f).Outcome(), nil
}

// Explain returns the full rubric breakdown.
func (e *RuleEvaluator) Explain(f domain.PatientFeatures) RuleScore {
	return Score(f)
}
