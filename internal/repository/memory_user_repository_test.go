package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/coop-scheduler/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	store := "store-1"

	u := &domain.User{Email: "a@x.com", PasswordHash: "h", Role: domain.RoleEmployee, StoreID: &store, Qualifications: []string{"deli"}}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	assert.ErrorIs(t, repo.Create(ctx, &domain.User{Email: "a@x.com"}), ErrDuplicateEmail)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "store-1", *got.StoreID)

	got.Qualifications[0] = "mutated"
	again, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"deli"}, again.Qualifications)

	_, err = repo.GetByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	again.FirstName = "Ana"
	require.NoError(t, repo.Update(ctx, again))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FirstName)

	assert.ErrorIs(t, repo.Update(ctx, &domain.User{ID: "missing"}), ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserRepositoryUpdateProfileTouchesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	u := &domain.User{Email: "b@x.com", PasswordHash: "h", Role: domain.RoleEmployee, FirstName: "Bo", Phone: "111"}
	require.NoError(t, repo.Create(ctx, u))

	promoted := *u
	promoted.Role = domain.RoleStoreManager
	require.NoError(t, repo.Update(ctx, &promoted))

	phone := "222"
	got, err := repo.UpdateProfile(ctx, u.ID, domain.ProfileUpdate{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "222", got.Phone)
	assert.Equal(t, "Bo", got.FirstName)
	assert.Equal(t, domain.RoleStoreManager, got.Role)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	_, err = repo.UpdateProfile(ctx, "missing", domain.ProfileUpdate{Phone: &phone})
	assert.ErrorIs(t, err, ErrNotFound)
}
