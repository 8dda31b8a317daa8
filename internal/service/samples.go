package service

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/health"
	"github.com/yourname/bloomhealth/internal/provider"
)

// ErrIngestUnsupported is returned when the configured provider does not
// accept pushed samples.
var ErrIngestUnsupported = errors.New("provider does not accept samples")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("quantity_kind", func(fl validator.FieldLevel) bool {
		k, err := health.ParseKind(fl.Field().String())
		return err == nil && !k.IsCharacteristic()
	})
	_ = v.RegisterValidation("blood_type", func(fl validator.FieldLevel) bool {
		_, err := internal.ParseBloodType(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("biological_sex", func(fl validator.FieldLevel) bool {
		_, err := internal.ParseBiologicalSex(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(SampleRequest)
		if !health.CompatibleUnit(health.Kind(req.Kind), health.Unit(req.Unit)) {
			sl.ReportError(req.Unit, "Unit", "unit", "compatible_unit", req.Kind)
		}
	}, SampleRequest{})
	return v
}

// SampleSink accepts samples and characteristics pushed for a user.
type SampleSink interface {
	Add(userID string, s health.Sample)
	SetProfile(userID string, p provider.Profile)
}

var _ SampleSink = (*provider.Memory)(nil)

type SampleRequest struct {
	Kind  string    `json:"kind" validate:"required,quantity_kind"`
	Value float64   `json:"value" validate:"gte=0"`
	Unit  string    `json:"unit" validate:"required"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end" validate:"required,gtefield=Start"`
}

type ProfileRequest struct {
	BloodType     string     `json:"bloodType" validate:"omitempty,blood_type"`
	BiologicalSex string     `json:"biologicalSex" validate:"omitempty,biological_sex"`
	DateOfBirth   *time.Time `json:"dateOfBirth" validate:"omitempty"`
}

func ValidateSampleRequest(req *SampleRequest) error {
	return validate.Struct(req)
}

func ValidateProfileRequest(req *ProfileRequest) error {
	return validate.Struct(req)
}

// IngestSample stores one sample for the user. A missing start defaults to
// the end date.
func IngestSample(sink SampleSink, user *internal.User, req *SampleRequest) (*health.Sample, error) {
	if sink == nil {
		return nil, ErrIngestUnsupported
	}
	start := req.Start
	if start.IsZero() {
		start = req.End
	}
	s := health.Sample{
		Kind:     health.Kind(req.Kind),
		Quantity: health.Quantity{Value: req.Value, Unit: health.Unit(req.Unit)},
		Start:    start,
		End:      req.End,
	}
	sink.Add(user.ID, s)
	return &s, nil
}

// UpdateProfile replaces the user's characteristics. Empty fields reset to
// not set.
func UpdateProfile(sink SampleSink, user *internal.User, req *ProfileRequest) (*provider.Profile, error) {
	if sink == nil {
		return nil, ErrIngestUnsupported
	}
	bt, err := internal.ParseBloodType(req.BloodType)
	if err != nil {
		return nil, err
	}
	sex, err := internal.ParseBiologicalSex(req.BiologicalSex)
	if err != nil {
		return nil, err
	}
	p := provider.Profile{BloodType: bt, BiologicalSex: sex, DateOfBirth: req.DateOfBirth}
	sink.SetProfile(user.ID, p)
	return &p, nil
}
