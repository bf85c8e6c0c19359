// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leafcare/internal/auth"
	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/session"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, account *Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockRepository) CreateIfEmpty(ctx context.Context, account *Account) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	args := m.Called(ctx, username)
	if a, ok := args.Get(0).(*Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return m.Called(ctx, username, passwordHash).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *mockRepository) List(ctx context.Context) ([]Account, error) {
	args := m.Called(ctx)
	if a, ok := args.Get(0).([]Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

type mockRevoker struct {
	mock.Mock
}

func (m *mockRevoker) DeleteForUser(ctx context.Context, role, username string) error {
	return m.Called(ctx, role, username).Error(0)
}

func TestCreateFirst_OpenNamespace(t *testing.T) {
	repo := &mockRepository{}
	repo.On("CreateIfEmpty", mock.Anything, mock.MatchedBy(func(a *Account) bool {
		return a.Username == "root" && a.PasswordHash == "hash"
	})).Return(true, nil)

	svc := NewService(repo, &mockRevoker{}, Admins)
	info, err := svc.CreateFirst(context.Background(), "root", "hash")

	require.NoError(t, err)
	assert.Equal(t, "root", info.Username)
	repo.AssertExpectations(t)
}

func TestCreateFirst_ClosedNamespace(t *testing.T) {
	repo := &mockRepository{}
	repo.On("CreateIfEmpty", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("ExistsByUsername", mock.Anything, "second").Return(false, nil)

	svc := NewService(repo, &mockRevoker{}, Admins)
	_, err := svc.CreateFirst(context.Background(), "second", "hash")

	assert.ErrorIs(t, err, auth.ErrRegistrationClosed)
}

func TestCreateFirst_DuplicateUsername(t *testing.T) {
	repo := &mockRepository{}
	repo.On("CreateIfEmpty", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("ExistsByUsername", mock.Anything, "root").Return(true, nil)

	svc := NewService(repo, &mockRevoker{}, Admins)
	_, err := svc.CreateFirst(context.Background(), "root", "hash")

	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestCreate_PropagatesDuplicate(t *testing.T) {
	repo := &mockRepository{}
	repo.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("create account: %w", core.ErrDuplicateKey))

	svc := NewService(repo, &mockRevoker{}, Users)
	_, err := svc.Create(context.Background(), "asha", "hash")

	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestDeleteUser_RevokesSessions(t *testing.T) {
	repo := &mockRepository{}
	repo.On("Delete", mock.Anything, "asha").Return(nil)
	revoker := &mockRevoker{}
	revoker.On("DeleteForUser", mock.Anything, session.RoleUser, "asha").Return(nil)

	svc := NewService(repo, revoker, Users)
	require.NoError(t, svc.DeleteUser(context.Background(), "asha"))

	revoker.AssertExpectations(t)
}

func TestDeleteUser_NotFound(t *testing.T) {
	repo := &mockRepository{}
	repo.On("Delete", mock.Anything, "ghost").
		Return(fmt.Errorf("delete account: %w", core.ErrNotFound))
	revoker := &mockRevoker{}

	svc := NewService(repo, revoker, Users)
	err := svc.DeleteUser(context.Background(), "ghost")

	assert.ErrorIs(t, err, core.ErrNotFound)
	revoker.AssertNotCalled(t, "DeleteForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteUser_RevokeFailure(t *testing.T) {
	repo := &mockRepository{}
	repo.On("Delete", mock.Anything, "asha").Return(nil)
	revoker := &mockRevoker{}
	revoker.On("DeleteForUser", mock.Anything, session.RoleUser, "asha").
		Return(errors.New("redis down"))

	svc := NewService(repo, revoker, Users)
	err := svc.DeleteUser(context.Background(), "asha")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoke sessions")
}

func TestGetByUsername_MapsAccount(t *testing.T) {
	repo := &mockRepository{}
	repo.On("GetByUsername", mock.Anything, "asha").Return(&Account{
		ID:           "id-1",
		Username:     "asha",
		PasswordHash: "hash",
	}, nil)

	svc := NewService(repo, &mockRevoker{}, Users)
	info, err := svc.GetByUsername(context.Background(), "asha")

	require.NoError(t, err)
	assert.Equal(t, &auth.AccountInfo{ID: "id-1", Username: "asha", PasswordHash: "hash"}, info)
}

func TestNamespaceValid(t *testing.T) {
	assert.True(t, Users.Valid())
	assert.True(t, Admins.Valid())
	assert.False(t, Namespace("carts").Valid())
	assert.Panics(t, func() { NewRepository(nil, Namespace("carts")) })
}
