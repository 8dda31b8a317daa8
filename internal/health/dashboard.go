package health

import (
	"fmt"
	"strconv"

	"github.com/yourname/bloomhealth/internal"
)

type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
}

type Section struct {
	Title string `json:"title"`
	Icon  string `json:"icon"`
	Cards []Card `json:"cards"`
}

type Dashboard struct {
	Personal Section `json:"personal"`
	Vitals   Section `json:"vitals"`
	Body     Section `json:"body"`
}

// BuildDashboard renders display strings for every metric of s.
func BuildDashboard(s internal.HealthSnapshot) Dashboard {
	personal := []Card{
		{Title: "Blood Type", Value: s.BloodType.String(), Icon: "drop"},
		{Title: "Biological Sex", Value: s.BiologicalSex.String(), Icon: "person"},
	}
	if s.DateOfBirth != nil {
		personal = append(personal, Card{Title: "Date of Birth", Value: s.DateOfBirth.Format("Jan 2, 2006"), Icon: "calendar"})
	}

	return Dashboard{
		Personal: Section{Title: "Personal Information", Icon: "person.fill", Cards: personal},
		Vitals: Section{
			Title: "Vital Metrics",
			Icon:  "heart.text.square.fill",
			Cards: []Card{
				{Title: "Heart Rate", Value: fmt.Sprintf("%.0f bpm", s.HeartRate), Icon: "heart.fill"},
				{Title: "Steps", Value: strconv.Itoa(s.StepCount), Icon: "figure.walk"},
				{Title: "Blood Pressure", Value: fmt.Sprintf("%.0f/%.0f mmHg", s.SystolicBloodPressure, s.DiastolicBloodPressure), Icon: "waveform.path.ecg"},
				{Title: "Blood Glucose", Value: fmt.Sprintf("%.2f mg/dL", s.BloodGlucose), Icon: "drop.fill"},
			},
		},
		Body: Section{
			Title: "Body Metrics",
			Icon:  "figure.stand",
			Cards: []Card{
				{Title: "Height", Value: fmt.Sprintf("%.2f m", s.Height), Icon: "ruler"},
				{Title: "Body Mass", Value: fmt.Sprintf("%.2f kg", s.BodyMass), Icon: "scalemass"},
				{Title: "BMI", Value: fmt.Sprintf("%.2f", s.BodyMassIndex), Icon: "figure"},
				{Title: "Lean Body Mass", Value: fmt.Sprintf("%.2f kg", s.LeanBodyMass), Icon: "figure.arms.open"},
				{Title: "Body Fat", Value: fmt.Sprintf("%.2f%%", s.BodyFatPercentage), Icon: "percent"},
				{Title: "Waist", Value: fmt.Sprintf("%.2f m", s.WaistCircumference), Icon: "circle.dashed"},
			},
		},
	}
}
