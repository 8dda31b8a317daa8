package health

import "fmt"

// Kind identifies one metric of the snapshot. The string value doubles as
// the record key and the provider's type identifier.
type Kind string

const (
	KindHeartRate              Kind = "heartRate"
	KindStepCount              Kind = "stepCount"
	KindHeight                 Kind = "height"
	KindBodyMass               Kind = "bodyMass"
	KindBodyMassIndex          Kind = "bodyMassIndex"
	KindLeanBodyMass           Kind = "leanBodyMass"
	KindBodyFatPercentage      Kind = "bodyFatPercentage"
	KindWaistCircumference     Kind = "waistCircumference"
	KindSystolicBloodPressure  Kind = "systolicBloodPressure"
	KindDiastolicBloodPressure Kind = "diastolicBloodPressure"
	KindBloodGlucose           Kind = "bloodGlucose"
	KindBloodType              Kind = "bloodType"
	KindBiologicalSex          Kind = "biologicalSex"
	KindDateOfBirth            Kind = "dateOfBirth"
)

var allKinds = []Kind{
	KindHeartRate,
	KindStepCount,
	KindHeight,
	KindBodyMass,
	KindBodyMassIndex,
	KindLeanBodyMass,
	KindBodyFatPercentage,
	KindWaistCircumference,
	KindSystolicBloodPressure,
	KindDiastolicBloodPressure,
	KindBloodGlucose,
	KindBloodType,
	KindBiologicalSex,
	KindDateOfBirth,
}

var displayUnits = map[Kind]Unit{
	KindHeartRate:              UnitCountPerMinute,
	KindStepCount:              UnitCount,
	KindHeight:                 UnitMeter,
	KindBodyMass:               UnitKilogram,
	KindBodyMassIndex:          UnitCount,
	KindLeanBodyMass:           UnitKilogram,
	KindBodyFatPercentage:      UnitPercent,
	KindWaistCircumference:     UnitMeter,
	KindSystolicBloodPressure:  UnitMillimeterOfMercury,
	KindDiastolicBloodPressure: UnitMillimeterOfMercury,
	KindBloodGlucose:           UnitMilligramPerDeciliter,
}

// AllKinds returns every metric kind, quantities first.
func AllKinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// QuantityKinds returns the kinds backed by numeric samples.
func QuantityKinds() []Kind {
	out := make([]Kind, 0, len(displayUnits))
	for _, k := range allKinds {
		if !k.IsCharacteristic() {
			out = append(out, k)
		}
	}
	return out
}

// IsCharacteristic reports whether the kind is a fixed user characteristic
// rather than a sampled quantity.
func (k Kind) IsCharacteristic() bool {
	switch k {
	case KindBloodType, KindBiologicalSex, KindDateOfBirth:
		return true
	}
	return false
}

// DisplayUnit is the unit the snapshot stores the kind in. Characteristics
// have none.
func (k Kind) DisplayUnit() Unit {
	return displayUnits[k]
}

func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("health: unknown metric kind %q", s)
	}
	return k, nil
}
