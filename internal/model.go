package internal

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Initials returns the upper-cased first letter of each word in the user's name.
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(u.Name) {
		r := []rune(part)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

type BloodType int

const (
	BloodTypeNotSet BloodType = iota
	BloodTypeAPositive
	BloodTypeANegative
	BloodTypeBPositive
	BloodTypeBNegative
	BloodTypeABPositive
	BloodTypeABNegative
	BloodTypeOPositive
	BloodTypeONegative
)

var bloodTypeNames = [...]string{"Not Set", "A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func (b BloodType) String() string {
	if b < 0 || int(b) >= len(bloodTypeNames) {
		return "Unknown"
	}
	return bloodTypeNames[b]
}

func (b BloodType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BloodType) UnmarshalText(text []byte) error {
	v, err := ParseBloodType(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ParseBloodType accepts the display names returned by String. An empty
// string maps to BloodTypeNotSet.
func ParseBloodType(s string) (BloodType, error) {
	if s == "" {
		return BloodTypeNotSet, nil
	}
	for i, name := range bloodTypeNames {
		if strings.EqualFold(name, s) {
			return BloodType(i), nil
		}
	}
	return BloodTypeNotSet, fmt.Errorf("unknown blood type %q", s)
}

type BiologicalSex int

const (
	BiologicalSexNotSet BiologicalSex = iota
	BiologicalSexMale
	BiologicalSexFemale
	BiologicalSexOther
)

var biologicalSexNames = [...]string{"Not Set", "Male", "Female", "Other"}

func (s BiologicalSex) String() string {
	if s < 0 || int(s) >= len(biologicalSexNames) {
		return "Unknown"
	}
	return biologicalSexNames[s]
}

func (s BiologicalSex) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *BiologicalSex) UnmarshalText(text []byte) error {
	v, err := ParseBiologicalSex(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseBiologicalSex(s string) (BiologicalSex, error) {
	if s == "" {
		return BiologicalSexNotSet, nil
	}
	for i, name := range biologicalSexNames {
		if strings.EqualFold(name, s) {
			return BiologicalSex(i), nil
		}
	}
	return BiologicalSexNotSet, fmt.Errorf("unknown biological sex %q", s)
}

// HealthSnapshot is the point-in-time aggregate of every health metric for
// one user. Fields keep their zero value until their own fetch completes.
type HealthSnapshot struct {
	HeartRate              float64       `json:"heartRate"`              // count/min
	StepCount              int           `json:"stepCount"`              // count
	Height                 float64       `json:"height"`                 // m
	BodyMass               float64       `json:"bodyMass"`               // kg
	BodyMassIndex          float64       `json:"bodyMassIndex"`          // dimensionless
	LeanBodyMass           float64       `json:"leanBodyMass"`           // kg
	BodyFatPercentage      float64       `json:"bodyFatPercentage"`      // %
	WaistCircumference     float64       `json:"waistCircumference"`     // m
	SystolicBloodPressure  float64       `json:"systolicBloodPressure"`  // mmHg
	DiastolicBloodPressure float64       `json:"diastolicBloodPressure"` // mmHg
	BloodGlucose           float64       `json:"bloodGlucose"`           // mg/dL
	BloodType              BloodType     `json:"bloodType"`
	BiologicalSex          BiologicalSex `json:"biologicalSex"`
	DateOfBirth            *time.Time    `json:"dateOfBirth,omitempty"`
	Authorized             bool          `json:"authorized"`
}
