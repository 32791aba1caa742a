package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/coop-scheduler/internal/auth"
	"github.com/spec-kit/coop-scheduler/internal/config"
	"github.com/spec-kit/coop-scheduler/internal/domain"
	"github.com/spec-kit/coop-scheduler/internal/events"
	"github.com/spec-kit/coop-scheduler/internal/observability"
	"github.com/spec-kit/coop-scheduler/internal/repository"
	apperrors "github.com/spec-kit/coop-scheduler/pkg/util"
)

// AuthService coordinates login, session renewal and profile flows.
type AuthService struct {
	users       repository.UserRepository
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	events      events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	bcryptCost  int
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service. Revocations is nil unless
// refresh revocation is enabled.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	Events      events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User         *domain.User
	AccessToken  *domain.Token
	RefreshToken *domain.Token
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	auth.WarmDummy(cfg.Auth.BcryptCost)
	return &AuthService{
		users:       deps.UserRepo,
		tokens:      deps.Tokens,
		revocations: deps.Revocations,
		events:      deps.Events,
		metrics:     deps.Metrics,
		logger:      logger,
		bcryptCost:  cfg.Auth.BcryptCost,
		now:         now,
	}
}

// Login verifies the credentials and mints an access/refresh pair. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.CompareDummy(password, s.bcryptCost)
			s.loginFailed(ctx)
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.loginFailed(ctx)
		return nil, apperrors.NewInvalidCredentials()
	}

	identity := domain.IdentityOf(user)
	access, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refresh, err := s.tokens.IssueRefreshToken(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.metrics.RecordTokenIssued(domain.TokenKindAccess)
	s.metrics.RecordTokenIssued(domain.TokenKindRefresh)

	s.publish(ctx, events.Event{Type: events.EventUserLoggedIn, UserID: user.ID, Role: user.Role})
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token. The new token carries the claims
// embedded in the refresh token; the identity store is not consulted, so role, store and
// qualification changes only show up after the next login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Token, error) {
	if refreshToken == "" {
		s.metrics.RecordRenewal(observability.RenewalNoCookie)
		return nil, apperrors.NewUnauthorized("no refresh token")
	}

	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		s.metrics.RecordRenewal(observability.RenewalRejected)
		return nil, apperrors.NewForbidden("invalid refresh token")
	}

	if s.revocations != nil {
		revokedAt, found, err := s.revocations.RevokedAt(ctx, claims.Subject)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if found && (claims.IssuedAt == nil || claims.IssuedAt.Time.Before(revokedAt)) {
			s.metrics.RecordRenewal(observability.RenewalRevoked)
			return nil, apperrors.NewForbidden("invalid refresh token")
		}
	}

	access, err := s.tokens.IssueAccessToken(claims.Identity())
	if err != nil {
		s.metrics.RecordRenewal(observability.RenewalSignError)
		return nil, apperrors.NewInternalError(err)
	}
	s.metrics.RecordTokenIssued(domain.TokenKindAccess)
	s.metrics.RecordRenewal(observability.RenewalOK)
	s.publish(ctx, events.Event{
		Type:    events.EventSessionRenewed,
		UserID:  claims.Subject,
		Role:    claims.Role,
		Payload: events.SessionRenewedPayload{AccessTokenID: access.ID},
	})
	return access, nil
}

// Me loads the current state of the caller's identity.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// UpdateProfile applies self-service profile changes to the caller's identity. Only the
// fields present in update are written.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.Event{
		Type:    events.EventProfileUpdated,
		UserID:  user.ID,
		Role:    user.Role,
		Payload: events.ProfileUpdatedPayload{Fields: update.Fields()},
	})
	return user, nil
}

// Logout revokes the caller's refresh tokens when revocation is enabled. Anonymous logouts are
// a no-op; clearing the cookie is the transport's job.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return nil
	}
	revoked := false
	if s.revocations != nil {
		at := s.now().Truncate(time.Second)
		if err := s.revocations.RevokeUser(ctx, principal.UserID, at, s.tokens.RefreshTTL()); err != nil {
			return apperrors.NewInternalError(err)
		}
		revoked = true
	}
	s.publish(ctx, events.Event{
		Type:    events.EventUserLoggedOut,
		UserID:  principal.UserID,
		Role:    principal.Role,
		Payload: events.UserLoggedOutPayload{Revoked: revoked},
	})
	return nil
}

// RevocationEnabled reports whether logout revokes refresh tokens server-side.
func (s *AuthService) RevocationEnabled() bool {
	return s.revocations != nil
}

func (s *AuthService) loginFailed(ctx context.Context) {
	s.metrics.RecordLoginFailure()
	s.publish(ctx, events.Event{Type: events.EventLoginFailed})
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
