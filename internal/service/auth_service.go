package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolops/presence-api/internal/models"
	appErrors "github.com/schoolops/presence-api/pkg/errors"
)

// tokenAlphabet matches the legacy token format: alphanumerics plus a few
// symbols heavy enough to keep the search space wide at 36 characters.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789%!@&#+"

type authUserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error
}

type tokenRepository interface {
	FindByToken(ctx context.Context, token string) (*models.AuthToken, error)
	FindByUserID(ctx context.Context, userID int64) (*models.AuthToken, error)
	Upsert(ctx context.Context, token *models.AuthToken) (*models.AuthToken, error)
	UpdateLevel(ctx context.Context, userID int64, level models.Level) error
}

type tokenCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

// AuthServiceConfig tunes token issuance and credential hashing.
type AuthServiceConfig struct {
	TokenLength   int
	TokenTTL      time.Duration // zero disables expiry
	TokenCacheTTL time.Duration
	BcryptCost    int
}

// cachedAuth is the token-resolution view kept in the cache so a hot token
// does not hit the database on every request.
type cachedAuth struct {
	UserID      int64        `json:"user_id"`
	Level       models.Level `json:"level"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
	HasPassword bool         `json:"has_password"`
}

// LoginResult carries an issued token plus the bootstrap flag for accounts
// that still have to set their first password.
type LoginResult struct {
	Token           string       `json:"token"`
	Level           models.Level `json:"level"`
	ExpiresAt       *time.Time   `json:"expires_at,omitempty"`
	MustSetPassword bool         `json:"must_set_password"`
}

// AuthService resolves opaque bearer tokens to identities and enforces the
// per-operation minimum permission level.
type AuthService struct {
	users  authUserRepository
	tokens tokenRepository
	cache  tokenCache
	logger *zap.Logger
	config AuthServiceConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, tokens tokenRepository, cache tokenCache, logger *zap.Logger, config AuthServiceConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenLength <= 0 {
		config.TokenLength = 36
	}
	if config.BcryptCost <= 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, cache: cache, logger: logger, config: config}
}

// Authorize resolves a bearer token and enforces the minimum level. Expiry
// is checked before the level so an expired elevated token never grants
// anything. Accounts without a password are rejected with the distinct
// bootstrap status.
func (s *AuthService) Authorize(ctx context.Context, token string, minLevel models.Level) (*models.AuthContext, error) {
	auth, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !auth.HasPassword {
		return nil, appErrors.ErrPasswordNotSet
	}
	return s.gate(auth, minLevel)
}

// AuthorizeBootstrap is Authorize without the password-set requirement. It
// exists for the one-time password-set flow and the login rotation path,
// which must accept accounts that are still bootstrapping.
func (s *AuthService) AuthorizeBootstrap(ctx context.Context, token string, minLevel models.Level) (*models.AuthContext, error) {
	auth, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.gate(auth, minLevel)
}

func (s *AuthService) resolve(ctx context.Context, token string) (*cachedAuth, error) {
	if token == "" {
		return nil, appErrors.ErrMissingCredentials
	}

	var auth cachedAuth
	if s.cache != nil && s.cache.Get(ctx, tokenCacheKey(token), &auth) == nil {
		if expired(auth.ExpiresAt) {
			return nil, appErrors.ErrTokenExpired
		}
		return &auth, nil
	}

	stored, err := s.tokens.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnknownToken
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve token")
	}
	if stored.Expired(time.Now().UTC()) {
		return nil, appErrors.ErrTokenExpired
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnknownToken
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load identity")
	}

	auth = cachedAuth{
		UserID:      stored.UserID,
		Level:       stored.Level,
		ExpiresAt:   stored.ExpiresAt,
		HasPassword: user.HasPassword(),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, tokenCacheKey(token), auth, s.config.TokenCacheTTL); err != nil {
			s.logger.Warn("token cache write failed", zap.Error(err))
		}
	}
	return &auth, nil
}

func (s *AuthService) gate(auth *cachedAuth, minLevel models.Level) (*models.AuthContext, error) {
	if expired(auth.ExpiresAt) {
		return nil, appErrors.ErrTokenExpired
	}
	if auth.Level < minLevel {
		return nil, appErrors.ErrInsufficientLevel
	}
	return &models.AuthContext{UserID: auth.UserID, Level: auth.Level}, nil
}

// Login authenticates by user id and password and installs a fresh token,
// overwriting any previous one. An account without a password still gets a
// token so it can complete the bootstrap flow; the result flags it.
func (s *AuthService) Login(ctx context.Context, userID int64, password string) (*LoginResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load identity")
	}

	mustSet := !user.HasPassword()
	if !mustSet {
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
			return nil, appErrors.ErrInvalidCredentials
		}
	}

	return s.install(ctx, user.ID, mustSet)
}

// Rotate regenerates the token of an already authenticated identity after
// re-verifying the password. The stored level survives the rotation.
func (s *AuthService) Rotate(ctx context.Context, userID int64, password string) (*LoginResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnknownToken
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load identity")
	}
	if !user.HasPassword() {
		return nil, appErrors.ErrPasswordNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	return s.install(ctx, user.ID, false)
}

// SetPassword stores a new password. While no password is set the old one
// is not required; afterwards it is.
func (s *AuthService) SetPassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return appErrors.Clone(appErrors.ErrValidation, "password must have at least 6 characters")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load identity")
	}

	if user.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(oldPassword)); err != nil {
			return appErrors.Clone(appErrors.ErrInvalidCredentials, "old password does not match")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store password")
	}

	s.invalidate(ctx, userID)
	return nil
}

// SetLevel changes the permission level of the identity's active token.
func (s *AuthService) SetLevel(ctx context.Context, userID int64, level models.Level) error {
	if !level.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown permission level")
	}
	if err := s.tokens.UpdateLevel(ctx, userID, level); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update level")
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *AuthService) install(ctx context.Context, userID int64, mustSet bool) (*LoginResult, error) {
	value, err := s.generateToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate token")
	}

	var expiresAt *time.Time
	if s.config.TokenTTL > 0 {
		t := time.Now().UTC().Add(s.config.TokenTTL)
		expiresAt = &t
	}

	// Drop the cache entry of the token being overwritten, otherwise it
	// would keep authorizing until its TTL runs out.
	s.invalidate(ctx, userID)

	stored, err := s.tokens.Upsert(ctx, &models.AuthToken{
		UserID:    userID,
		Token:     value,
		Level:     models.LevelStudent,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist token")
	}

	return &LoginResult{
		Token:           stored.Token,
		Level:           stored.Level,
		ExpiresAt:       stored.ExpiresAt,
		MustSetPassword: mustSet,
	}, nil
}

func (s *AuthService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	previous, err := s.tokens.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("token cache invalidation lookup failed", zap.Error(err))
		}
		return
	}
	s.cache.Delete(ctx, tokenCacheKey(previous.Token))
}

func (s *AuthService) generateToken() (string, error) {
	buf := make([]byte, s.config.TokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw token char: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func expired(at *time.Time) bool {
	return at != nil && time.Now().UTC().After(*at)
}

func tokenCacheKey(token string) string {
	return "auth:token:" + token
}
