package employee

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/store/storetest"
)

func TestEmployeeLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := New(storetest.New(t))
	owner := model.NewID()

	a, err := svc.Create(ctx, owner, CreateRequest{Name: "Ana", HourlyRate: 3000})
	require.NoError(t, err)
	assert.True(t, a.Active)

	inactive := false
	b, err := svc.Create(ctx, owner, CreateRequest{Name: "Ben", Active: &inactive})
	require.NoError(t, err)
	assert.False(t, b.Active)

	all, err := svc.List(ctx, owner, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	active, err := svc.List(ctx, owner, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ana", active[0].Name)

	upd, err := svc.Update(ctx, owner, b.ID, CreateRequest{Name: "Ben K", HourlyRate: 2000, Active: new(bool)})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), upd.HourlyRate)

	_, err = svc.Create(ctx, owner, CreateRequest{Name: "Neg", HourlyRate: -1})
	assert.ErrorIs(t, err, ErrNegativeRate)
	_, err = svc.Create(ctx, owner, CreateRequest{})
	assert.ErrorIs(t, err, ErrNameRequired)

	require.NoError(t, svc.Delete(ctx, owner, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, a.ID), ErrEmployeeNotFound)
	_, err = svc.Update(ctx, owner, a.ID, CreateRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}
