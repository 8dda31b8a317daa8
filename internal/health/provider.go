package health

import (
	"context"
	"time"

	"github.com/yourname/bloomhealth/internal"
)

// Sample is a single provider measurement.
type Sample struct {
	Kind     Kind      `json:"kind"`
	Quantity Quantity  `json:"quantity"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Provider is the health-data source for one user.
//
// QueryLatest returns the most recent single sample of kind with no
// predicate applied. A nil sample with a nil error means the provider has
// no data for that kind.
type Provider interface {
	RequestAuthorization(ctx context.Context, kinds []Kind) (bool, error)
	QueryLatest(ctx context.Context, kind Kind) (*Sample, error)
	BloodType(ctx context.Context) (internal.BloodType, error)
	BiologicalSex(ctx context.Context) (internal.BiologicalSex, error)
	DateOfBirth(ctx context.Context) (*time.Time, error)
}
