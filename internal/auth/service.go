// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/middleware"
	"github.com/carterperez-dev/leafcare/internal/session"
)

var ErrRegistrationClosed = errors.New("admin registration closed")

// AccountInfo is the view of a stored account the auth flow needs.
type AccountInfo struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type AccountProvider interface {
	GetByUsername(ctx context.Context, username string) (*AccountInfo, error)
	Create(ctx context.Context, username, passwordHash string) (*AccountInfo, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// AdminProvider adds the single-admin bootstrap on top of plain accounts.
// CreateFirst must fail with ErrRegistrationClosed once any admin exists,
// or with core.ErrDuplicateKey when that exact username is taken.
type AdminProvider interface {
	AccountProvider
	Count(ctx context.Context) (int, error)
	CreateFirst(ctx context.Context, username, passwordHash string) (*AccountInfo, error)
}

type Service struct {
	users    AccountProvider
	admins   AdminProvider
	jwt      *JWTManager
	sessions session.Store
}

func NewService(
	users AccountProvider,
	admins AdminProvider,
	jwt *JWTManager,
	sessions session.Store,
) *Service {
	return &Service{
		users:    users,
		admins:   admins,
		jwt:      jwt,
		sessions: sessions,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req CredentialsRequest,
) (*AccountResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.users.Create(ctx, req.Username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	return toAccountResponse(account, session.RoleUser), nil
}

func (s *Service) Login(
	ctx context.Context,
	req CredentialsRequest,
) (*LoginResponse, error) {
	return s.login(ctx, s.users, session.RoleUser, req)
}

// BootstrapStatus is read from the database on every call so a freshly
// registered admin closes registration for all instances at once.
func (s *Service) BootstrapStatus(ctx context.Context) (*BootstrapResponse, error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}

	return &BootstrapResponse{RegistrationOpen: count == 0}, nil
}

func (s *Service) RegisterAdmin(
	ctx context.Context,
	req CredentialsRequest,
) (*AccountResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.admins.CreateFirst(ctx, req.Username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("register admin: %w", err)
	}

	return toAccountResponse(account, session.RoleAdmin), nil
}

func (s *Service) LoginAdmin(
	ctx context.Context,
	req CredentialsRequest,
) (*LoginResponse, error) {
	return s.login(ctx, s.admins, session.RoleAdmin, req)
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (s *Service) CurrentSession(
	ctx context.Context,
	sessionID string,
) (*SessionResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("current session: %w", err)
	}

	return &SessionResponse{
		Username:  sess.Username,
		Role:      sess.Role,
		LoggedIn:  true,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// VerifyAccessToken checks the token signature and then requires the
// session it names to still exist, so logout takes effect immediately.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}

	if sess.Username != claims.Username || sess.Role != claims.Role {
		return nil, fmt.Errorf(
			"verify session: claims do not match session: %w",
			core.ErrTokenInvalid,
		)
	}

	return &middleware.AccessTokenClaims{
		SessionID: sess.ID,
		Username:  sess.Username,
		Role:      sess.Role,
	}, nil
}

func (s *Service) login(
	ctx context.Context,
	provider AccountProvider,
	role string,
	req CredentialsRequest,
) (*LoginResponse, error) {
	account, err := provider.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&account.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = provider.UpdatePassword(ctx, account.Username, newHash)
	}

	sess, err := s.sessions.Create(ctx, account.Username, role)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		SessionID: sess.ID,
		Username:  sess.Username,
		Role:      sess.Role,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		//nolint:errcheck // session without a token is unreachable anyway
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   sess.ExpiresAt,
		Username:    sess.Username,
		Role:        sess.Role,
	}, nil
}

func toAccountResponse(a *AccountInfo, role string) *AccountResponse {
	return &AccountResponse{
		Username:  a.Username,
		Role:      role,
		CreatedAt: a.CreatedAt,
	}
}

var _ middleware.TokenVerifier = (*Service)(nil)
