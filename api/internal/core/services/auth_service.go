package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cryptvault/api/internal/core/domain"
)

// maxPasswordBytes is bcrypt's input limit. It counts bytes, not runes.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// TokenPair is returned by Login and Refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type AuthService struct {
	repo   domain.UserRepository
	tokens *TokenService
	logger *slog.Logger
	cost   int
	// dummyHash is compared on unknown logins; both login paths run bcrypt.
	dummyHash []byte
}

func NewAuthService(repo domain.UserRepository, tokens *TokenService, logger *slog.Logger) *AuthService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("cryptvault-unknown-account"), bcrypt.DefaultCost)
	if err != nil {
		// Only reachable with an invalid cost.
		panic(fmt.Sprintf("failed to prepare dummy hash: %v", err))
	}
	return &AuthService{repo: repo, tokens: tokens, logger: logger, cost: bcrypt.DefaultCost, dummyHash: dummy}
}

// Register creates an active account. Duplicate usernames or emails surface
// as domain.ErrConflict from the repository.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*TokenPair, error) {
	user, err := s.repo.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same bcrypt cost as a known account.
			bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountSuspended
	}

	return s.issue(user)
}

// Refresh rotates the token pair. The user is reloaded so suspended accounts
// cannot keep refreshing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountSuspended
	}

	return s.issue(user)
}

// ValidateAccessToken resolves an access token to a live, active identity.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*domain.UserClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		s.logger.Warn("access attempt with suspended account", slog.String("user_id", user.ID.String()))
		return nil, domain.ErrAccountSuspended
	}
	return claims, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *AuthService) issue(user *domain.User) (*TokenPair, error) {
	access, refresh, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}
