package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-finance-bot/internal/common/errors"
	"vehicle-finance-bot/internal/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	sess := models.NewSession("conv-1")
	sess.Step = models.StepDetermineType
	require.NoError(t, s.Put(ctx, sess))

	got, err := s.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepDetermineType, got.Step)
	assert.Equal(t, "conv-1", got.ID)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	value := 4000000.0
	sess := models.NewSession("conv-1")
	sess.NewFields = &models.NewVehicleFields{VehicleValue: &value}
	require.NoError(t, s.Put(ctx, sess))

	// Mutating the caller's copy after Put must not affect the stored one.
	sess.Step = models.StepEnd
	*sess.NewFields.VehicleValue = 1.0

	got, err := s.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepGreeting, got.Step)
	assert.Equal(t, 4000000.0, *got.NewFields.VehicleValue)

	// And mutating a Get result must not affect later reads.
	got.Step = models.StepExit
	again, err := s.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepGreeting, again.Step)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, models.NewSession("conv-1")))
	require.NoError(t, s.Delete(ctx, "conv-1"))
	require.NoError(t, s.Delete(ctx, "conv-1"))

	_, err := s.Get(ctx, "conv-1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))
}
