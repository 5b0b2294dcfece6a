package risk

import "github.com/attaboy/strokecheck/internal/domain"

// VectorSize is the width of the classifier feature vector.
const VectorSize = 15

// Vector is the encoded classifier input, ordered as FeatureNames.
type Vector [VectorSize]float64

// FeatureNames is the column order the forest was trained on.
var FeatureNames = [VectorSize]string{
	"age",
	"avg_glucose_level",
	"bmi",
	"gender_Male",
	"hypertension_1",
	"heart_disease_1",
	"ever_married_Yes",
	"work_type_Never_worked",
	"work_type_Private",
	"work_type_Self_employed",
	"work_type_children",
	"Residence_type_Urban",
	"smoking_status_formerly_smoked",
	"smoking_status_never_smoked",
	"smoking_status_smokes",
}

// Encode expands the ten form fields into the classifier vector. Work type
// and smoking status are one-hot encoded without their baseline category
// (government job, unknown), so the baseline encodes as all zeros.
func Encode(f domain.PatientFeatures) Vector {
	return Vector{
		float64(f.Age),
		f.AvgGlucose,
		f.BMI,
		float64(f.Gender),
		float64(f.Hypertension),
		float64(f.HeartDisease),
		float64(f.EverMarried),
		indicator(f.WorkType == domain.WorkNeverWorked),
		indicator(f.WorkType == domain.WorkPrivate),
		indicator(f.WorkType == domain.WorkSelfEmployed),
		indicator(f.WorkType == domain.WorkChildren),
		float64(f.Residence),
		indicator(f.Smoking == domain.SmokingFormerly),
		indicator(f.Smoking == domain.SmokingNever),
		indicator(f.Smoking == domain.SmokingSmokes),
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
