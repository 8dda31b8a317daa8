package health

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yourname/bloomhealth/internal"
)

func TestToRecord_KeySet(t *testing.T) {
	rec := ToRecord(internal.HealthSnapshot{Authorized: true})

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	want := RecordFields()
	sort.Strings(keys)
	sort.Strings(want)
	assert.Equal(t, want, keys)
	assert.NotContains(t, rec, "authorized")
}

func TestToRecord_Defaults(t *testing.T) {
	rec := ToRecord(internal.HealthSnapshot{HeartRate: 72.0, StepCount: 5000})

	assert.Equal(t, 72.0, rec["heartRate"])
	assert.Equal(t, 5000, rec["stepCount"])
	assert.Equal(t, "Not Set", rec["bloodType"])
	assert.Equal(t, "Not Set", rec["biologicalSex"])
	assert.Equal(t, "Unknown", rec["dateOfBirth"])
}

func TestToRecord_SetCharacteristics(t *testing.T) {
	dob := time.Date(1985, 7, 3, 0, 0, 0, 0, time.UTC)
	rec := ToRecord(internal.HealthSnapshot{
		BloodType:     internal.BloodTypeOPositive,
		BiologicalSex: internal.BiologicalSexMale,
		DateOfBirth:   &dob,
	})

	assert.Equal(t, "O+", rec["bloodType"])
	assert.Equal(t, "Male", rec["biologicalSex"])
	assert.Equal(t, "1985-07-03 00:00:00 +0000", rec["dateOfBirth"])
}
