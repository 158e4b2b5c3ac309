package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gomesrodrigo528/app-form/internal/domain"
	"github.com/gomesrodrigo528/app-form/internal/repository"
	"github.com/gomesrodrigo528/app-form/pkg/blacklist"
	"github.com/gomesrodrigo528/app-form/pkg/hash"
	"github.com/gomesrodrigo528/app-form/pkg/jwt"
	"github.com/gomesrodrigo528/app-form/pkg/metrics"
)

type AuthService struct {
	userRepo     repository.UserRepository
	tenantRepo   repository.TenantRepository
	hasher       *hash.Hasher
	tokenService *jwt.TokenService
	revoked      blacklist.Store
	log          *zap.Logger
	now          func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type LoginResponse struct {
	Token  *domain.Token  `json:"token"`
	User   *domain.User   `json:"user"`
	Tenant *domain.Tenant `json:"tenant"`
}

func NewAuthService(
	userRepo repository.UserRepository,
	tenantRepo repository.TenantRepository,
	hasher *hash.Hasher,
	tokenService *jwt.TokenService,
	revoked blacklist.Store,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tenantRepo:   tenantRepo,
		hasher:       hasher,
		tokenService: tokenService,
		revoked:      revoked,
		log:          log,
		now:          time.Now,
	}
}

// Verify checks the password of the user registered with email. A match against a
// legacy or weaker hash rewrites the stored hash as bcrypt; failing to persist it is
// logged and does not fail the login.
func (s *AuthService) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, needsRehash, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Warn("unreadable password hash",
			zap.String("user_id", user.ID.String()),
			zap.String("scheme", string(hash.Identify(user.PasswordHash))),
			zap.Error(err),
		)
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if needsRehash {
		s.rehash(ctx, user, password)
	}
	return user, nil
}

func (s *AuthService) rehash(ctx context.Context, user *domain.User, password string) {
	scheme := hash.Identify(user.PasswordHash)
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("failed to rehash password", zap.String("user_id", user.ID.String()), zap.Error(err))
		return
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
		s.log.Error("failed to persist migrated password hash",
			zap.String("user_id", user.ID.String()),
			zap.String("scheme", string(scheme)),
			zap.Error(err),
		)
		return
	}
	user.PasswordHash = newHash
	metrics.HashMigrationCounter.WithLabelValues(string(scheme)).Inc()
	s.log.Info("migrated password hash to bcrypt",
		zap.String("user_id", user.ID.String()),
		zap.String("scheme", string(scheme)),
	)
}

// Login verifies the credentials and issues a session token. Disabled users, and users
// of disabled tenants other than superusers, cannot sign in.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.Verify(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginCounter.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginCounter.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if !user.IsActive {
		metrics.LoginCounter.WithLabelValues("inactive").Inc()
		return nil, forbidden("account is disabled")
	}

	tenant, err := s.tenantRepo.GetByID(ctx, user.TenantID)
	if err != nil {
		metrics.LoginCounter.WithLabelValues("error").Inc()
		return nil, err
	}
	if !tenant.IsActive && !user.IsSuperuser {
		metrics.LoginCounter.WithLabelValues("inactive").Inc()
		return nil, forbidden("tenant is disabled")
	}

	now := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	token, err := s.tokenService.Generate(user)
	if err != nil {
		metrics.LoginCounter.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.LoginCounter.WithLabelValues("success").Inc()
	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
	)
	return &LoginResponse{Token: token, User: user, Tenant: tenant}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return nil
}

// Authenticate validates a bearer token and checks it has not been revoked, either by
// itself or through a revocation of all the user's sessions.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := s.tokenService.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token has been revoked", domain.ErrInvalidCredentials)
	}

	if claims.IssuedAt != nil {
		revoked, err = s.revoked.IsUserRevoked(ctx, claims.UserID.String(), claims.IssuedAt.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: session has been revoked", domain.ErrInvalidCredentials)
		}
	}
	return claims, nil
}
