package domain

// WorkType is the categorical employment field of the patient form.
// Government job is the implicit baseline of the one-hot encoding.
type WorkType int

const (
	WorkGovernment WorkType = iota
	WorkNeverWorked
	WorkPrivate
	WorkSelfEmployed
	WorkChildren
)

func (w WorkType) String() string {
	switch w {
	case WorkGovernment:
		return "Govt_job"
	case WorkNeverWorked:
		return "Never_worked"
	case WorkPrivate:
		return "Private"
	case WorkSelfEmployed:
		return "Self-employed"
	case WorkChildren:
		return "children"
	default:
		return "unknown"
	}
}

// SmokingStatus is the categorical smoking field of the patient form.
// Unknown is the implicit baseline of the one-hot encoding.
type SmokingStatus int

const (
	SmokingUnknown SmokingStatus = iota
	SmokingFormerly
	SmokingNever
	SmokingSmokes
)

func (s SmokingStatus) String() string {
	switch s {
	case SmokingUnknown:
		return "Unknown"
	case SmokingFormerly:
		return "formerly smoked"
	case SmokingNever:
		return "never smoked"
	case SmokingSmokes:
		return "smokes"
	default:
		return "unknown"
	}
}

// PatientFeatures holds the ten raw inputs of the prediction form.
// Binary fields use 0/1. The validate tags describe the documented
// input ranges and are only enforced in strict mode.
type PatientFeatures struct {
	Age          int           `json:"age" validate:"gte=1,lte=120"`
	AvgGlucose   float64       `json:"avg_glucose_level" validate:"gte=50,lte=400"`
	BMI          float64       `json:"bmi" validate:"gte=10,lte=60"`
	Gender       int           `json:"gender" validate:"oneof=0 1"`
	Hypertension int           `json:"hypertension" validate:"oneof=0 1"`
	HeartDisease int           `json:"disease" validate:"oneof=0 1"`
	EverMarried  int           `json:"married" validate:"oneof=0 1"`
	WorkType     WorkType      `json:"work" validate:"gte=0,lte=4"`
	Residence    int           `json:"residence" validate:"oneof=0 1"`
	Smoking      SmokingStatus `json:"smoking" validate:"gte=0,lte=3"`
}
