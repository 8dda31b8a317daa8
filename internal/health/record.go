package health

import (
	"github.com/yourname/bloomhealth/internal"
)

// DefaultCollection is where pushed snapshots land unless configured otherwise.
const DefaultCollection = "HealthData"

const unknownDateOfBirth = "Unknown"

// DateDescriptionLayout formats a set date of birth in pushed records.
const DateDescriptionLayout = "2006-01-02 15:04:05 -0700"

// RecordFields is the exact key set of a pushed record.
func RecordFields() []string {
	out := make([]string, len(allKinds))
	for i, k := range allKinds {
		out[i] = string(k)
	}
	return out
}

// ToRecord flattens a snapshot into primitive values keyed by metric kind.
// The authorized flag is not part of the record.
func ToRecord(s internal.HealthSnapshot) map[string]any {
	dob := unknownDateOfBirth
	if s.DateOfBirth != nil {
		dob = s.DateOfBirth.UTC().Format(DateDescriptionLayout)
	}
	return map[string]any{
		string(KindHeartRate):              s.HeartRate,
		string(KindStepCount):              s.StepCount,
		string(KindHeight):                 s.Height,
		string(KindBodyMass):               s.BodyMass,
		string(KindBodyMassIndex):          s.BodyMassIndex,
		string(KindLeanBodyMass):           s.LeanBodyMass,
		string(KindBodyFatPercentage):      s.BodyFatPercentage,
		string(KindWaistCircumference):     s.WaistCircumference,
		string(KindSystolicBloodPressure):  s.SystolicBloodPressure,
		string(KindDiastolicBloodPressure): s.DiastolicBloodPressure,
		string(KindBloodGlucose):           s.BloodGlucose,
		string(KindBloodType):              s.BloodType.String(),
		string(KindBiologicalSex):          s.BiologicalSex.String(),
		string(KindDateOfBirth):            dob,
	}
}
