package service

import (
	"context"
	"errors"

	"github.com/spec-kit/coop-scheduler/internal/auth"
	"github.com/spec-kit/coop-scheduler/internal/domain"
	"github.com/spec-kit/coop-scheduler/internal/repository"
	apperrors "github.com/spec-kit/coop-scheduler/pkg/util"
)

// UserService exposes identity lookups to privileged callers.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Get returns the identity with the given id. Admins may read anyone; store managers only
// identities of their own store.
func (s *UserService) Get(ctx context.Context, actor *auth.Principal, id string) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return user, nil
	case domain.RoleStoreManager:
		if actor.StoreID != nil && user.StoreID != nil && *actor.StoreID == *user.StoreID {
			return user, nil
		}
		return nil, apperrors.NewForbidden("user outside your store")
	default:
		return nil, apperrors.NewForbidden("insufficient role")
	}
}
