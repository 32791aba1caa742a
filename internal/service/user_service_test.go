package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/coop-scheduler/internal/auth"
	"github.com/spec-kit/coop-scheduler/internal/domain"
	apperrors "github.com/spec-kit/coop-scheduler/pkg/util"
)

func principalOf(role domain.Role, store string) *auth.Principal {
	p := &auth.Principal{Identity: domain.Identity{UserID: "actor", Role: role}}
	if store != "" {
		p.StoreID = &store
	}
	return p
}

func TestUserServiceGet(t *testing.T) {
	f := newFixture(t, nil)
	inStore := f.seed(t, "e1@x.com", "p", domain.RoleEmployee, "store-1")
	otherStore := f.seed(t, "e2@x.com", "p", domain.RoleEmployee, "store-2")
	svc := NewUserService(f.users)
	ctx := context.Background()

	got, err := svc.Get(ctx, principalOf(domain.RoleAdmin, ""), otherStore.ID)
	require.NoError(t, err)
	assert.Equal(t, otherStore.ID, got.ID)

	got, err = svc.Get(ctx, principalOf(domain.RoleStoreManager, "store-1"), inStore.ID)
	require.NoError(t, err)
	assert.Equal(t, inStore.ID, got.ID)

	_, err = svc.Get(ctx, principalOf(domain.RoleStoreManager, "store-1"), otherStore.ID)
	requireDomainError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = svc.Get(ctx, principalOf(domain.RoleEmployee, "store-1"), inStore.ID)
	requireDomainError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = svc.Get(ctx, principalOf(domain.RoleAdmin, ""), "missing")
	requireDomainError(t, err, http.StatusNotFound, apperrors.CodeNotFound)

	_, err = svc.Get(ctx, nil, inStore.ID)
	requireDomainError(t, err, http.StatusUnauthorized, apperrors.CodeUnauthorized)
}
