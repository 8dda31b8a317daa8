package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/health"
)

func TestMemory_AuthorizationDefaultsToGranted(t *testing.T) {
	m := NewMemory(internal.NewNopLogger())
	ctx := context.Background()

	granted, err := m.For("u1").RequestAuthorization(ctx, health.AllKinds())
	require.NoError(t, err)
	assert.True(t, granted)

	m.SetAuthorization("u1", false)
	granted, err = m.For("u1").RequestAuthorization(ctx, health.AllKinds())
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestMemory_QueryLatestKeepsNewestSample(t *testing.T) {
	m := NewMemory(internal.NewNopLogger())
	now := time.Now()
	newer := health.Sample{Kind: health.KindHeartRate, Quantity: health.Quantity{Value: 64, Unit: health.UnitCountPerMinute}, End: now}
	older := health.Sample{Kind: health.KindHeartRate, Quantity: health.Quantity{Value: 90, Unit: health.UnitCountPerMinute}, End: now.Add(-time.Hour)}
	m.Add("u1", newer)
	m.Add("u1", older)

	got, err := m.For("u1").QueryLatest(context.Background(), health.KindHeartRate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 64.0, got.Quantity.Value)

	got, err = m.For("u1").QueryLatest(context.Background(), health.KindStepCount)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = m.For("nobody").QueryLatest(context.Background(), health.KindHeartRate)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_Profile(t *testing.T) {
	m := NewMemory(internal.NewNopLogger())
	p := m.For("u1")
	ctx := context.Background()

	bt, err := p.BloodType(ctx)
	require.NoError(t, err)
	assert.Equal(t, internal.BloodTypeNotSet, bt)
	dob, err := p.DateOfBirth(ctx)
	require.NoError(t, err)
	assert.Nil(t, dob)

	birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	m.SetProfile("u1", Profile{BloodType: internal.BloodTypeONegative, BiologicalSex: internal.BiologicalSexFemale, DateOfBirth: &birth})

	bt, _ = p.BloodType(ctx)
	assert.Equal(t, internal.BloodTypeONegative, bt)
	sex, _ := p.BiologicalSex(ctx)
	assert.Equal(t, internal.BiologicalSexFemale, sex)
	dob, _ = p.DateOfBirth(ctx)
	require.NotNil(t, dob)
	assert.True(t, birth.Equal(*dob))
}
