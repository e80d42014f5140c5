package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/config"
	"dormdesk-lendtrack/internal/core/domain"
	"dormdesk-lendtrack/internal/pkg/jwt"
	"dormdesk-lendtrack/internal/pkg/metrics"
	"dormdesk-lendtrack/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles session issuance, verification and rotation,
// including the failed-login lockout policy.
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	auditService     *AuditService
	cfg              *config.Config
	metrics          *metrics.Metrics
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	auditService *AuditService,
	cfg *config.Config,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		auditService:     auditService,
		cfg:              cfg,
		metrics:          m,
		now:              time.Now,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login authenticates a staff identity.
//
// Lockout policy: a locked account fails before any password check and
// without touching the failure counter. A failed password check
// increments the counter atomically; reaching the threshold arms a
// lockout window. Success resets counter and lockout.
func (s *AuthService) Login(ctx context.Context, input *LoginInput, meta ClientMeta) (*AuthResponse, error) {
	now := s.now()

	// 1. Find user by normalized email
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.countLogin("failure")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check if user is active
	if !user.IsActive {
		s.countLogin("failure")
		return nil, domain.ErrUserInactive
	}

	// 3. Lockout check comes before the password check
	if user.IsLocked(now) {
		s.countLogin("locked")
		return nil, domain.ErrAccountLocked
	}

	// 4. Verify password
	if !password.Verify(input.Password, user.Password) {
		failed, ferr := s.userRepo.RegisterFailedLogin(
			ctx, user.ID,
			s.cfg.Auth.LockoutThreshold,
			now.Add(s.cfg.Auth.LockoutDuration),
		)
		if ferr != nil {
			return nil, ferr
		}
		if failed == s.cfg.Auth.LockoutThreshold {
			log.Printf("🔒 Account locked after %d failed logins: %s", failed, user.Email)
			if s.metrics != nil {
				s.metrics.LockoutTotal.Inc()
			}
		}
		s.countLogin("failure")
		return nil, domain.ErrInvalidCredentials
	}

	// 5. Reset failure state and stamp last login
	if err := s.userRepo.ResetLoginState(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.FailedLogins = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	// 6. Generate tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	// 7. Store refresh token
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	s.countLogin("success")
	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &user.ID,
		Action:   domain.ActionUserLogin,
		Entity:   domain.EntityUser,
		EntityID: &user.ID,
		Meta:     meta,
	})

	log.Printf("✅ User logged in: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Refresh validates a refresh token, rotates it, and issues a new token
// pair. The old token is revoked before the new one is stored, bounding
// the blast radius of a leaked refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}

	// 2. Look up the stored token by hash
	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	// 3. Rotation check: a token already replaced must never mint again
	if storedToken.IsRevoked() {
		return nil, domain.ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	// 4. Re-resolve the identity
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	// 5. Rotate: revoke old, mint and store new
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &user.ID,
		Action:   domain.ActionTokenRefresh,
		Entity:   domain.EntityUser,
		EntityID: &user.ID,
	})

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Verify checks an access token's signature and expiry, then confirms
// the identity still exists and is active. It never writes.
func (s *AuthService) Verify(ctx context.Context, accessToken string) (*jwt.AccessClaims, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	return claims, nil
}

// Logout revokes the presented refresh token. The access token is left
// to expire naturally.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, meta ClientMeta) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	var actorID *uint
	if claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret); err == nil {
		actorID = &claims.UserID
	}
	s.auditService.Record(ctx, AuditEvent{
		ActorID:  actorID,
		Action:   domain.ActionUserLogout,
		Entity:   domain.EntityUser,
		EntityID: actorID,
		Meta:     meta,
	})

	return nil
}

// LogoutAll revokes every refresh token held by a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}
	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		user.Email,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		return err
	}

	token := &models.RefreshToken{
		UserID:    userID,
		TokenID:   claims.TokenID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}

func (s *AuthService) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginTotal.WithLabelValues(outcome).Inc()
	}
}
