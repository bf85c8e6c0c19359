// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/leafcare/internal/auth"
	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/session"
)

type SessionRevoker interface {
	DeleteForUser(ctx context.Context, role, username string) error
}

// Service manages the accounts of one namespace.
type Service struct {
	repo     Repository
	sessions SessionRevoker
	role     string
}

func NewService(repo Repository, sessions SessionRevoker, ns Namespace) *Service {
	role := session.RoleUser
	if ns == Admins {
		role = session.RoleAdmin
	}

	return &Service{
		repo:     repo,
		sessions: sessions,
		role:     role,
	}
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.AccountInfo, error) {
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return toAccountInfo(account), nil
}

func (s *Service) Create(
	ctx context.Context,
	username, passwordHash string,
) (*auth.AccountInfo, error) {
	account := &Account{
		Username:     username,
		PasswordHash: passwordHash,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	return toAccountInfo(account), nil
}

// CreateFirst registers the account only when the namespace is still empty.
func (s *Service) CreateFirst(
	ctx context.Context,
	username, passwordHash string,
) (*auth.AccountInfo, error) {
	account := &Account{
		Username:     username,
		PasswordHash: passwordHash,
	}

	created, err := s.repo.CreateIfEmpty(ctx, account)
	if err != nil {
		return nil, err
	}

	if !created {
		exists, err := s.repo.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("create first account: %w", core.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("create first account: %w", auth.ErrRegistrationClosed)
	}

	return toAccountInfo(account), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	username, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, username, passwordHash)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) ListUsers(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// DeleteUser removes the account and ends every session it still holds.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	if err := s.repo.Delete(ctx, username); err != nil {
		return err
	}

	if err := s.sessions.DeleteForUser(ctx, s.role, username); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	return nil
}

func toAccountInfo(a *Account) *auth.AccountInfo {
	return &auth.AccountInfo{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}
}

var _ auth.AdminProvider = (*Service)(nil)
