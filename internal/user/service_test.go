package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"velobook/internal/auth"
	"velobook/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

type MockRepo struct{ mock.Mock }

func (m *MockRepo) Create(ctx context.Context, name, email, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func TestRegister(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, "test-secret")

	repo.On("EmailExists", mock.Anything, "rider@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, "Rider", "rider@example.com", mock.AnythingOfType("string"), auth.RoleMember).
		Return(&User{ID: 1, Name: "Rider", Email: "rider@example.com", Role: auth.RoleMember}, nil)

	user, access, refresh, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Rider",
		Email:    "rider@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, "test-secret")

	repo.On("EmailExists", mock.Anything, "rider@example.com").Return(true, nil)

	_, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Rider",
		Email:    "rider@example.com",
		Password: "password123",
	})
	require.ErrorIs(t, err, ErrEmailExists)
	repo.AssertNotCalled(t, "Create")
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, "test-secret")

	hash, err := auth.HashPassword("correct-password")
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "rider@example.com").
		Return(&User{ID: 1, Email: "rider@example.com", PasswordHash: hash, Role: auth.RoleMember}, nil)

	_, _, _, err = svc.Login(context.Background(), LoginRequest{
		Email:    "rider@example.com",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, "test-secret")

	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)

	_, _, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo, "test-secret")

	_, refresh, err := auth.GenerateTokens(7, "rider@example.com", auth.RoleMember, "test-secret", "test-secret")
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, 7).
		Return(&User{ID: 7, Email: "rider@example.com", Role: auth.RoleMember}, nil)

	access, user, err := svc.RefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)

	claims, err := auth.ValidateToken(access, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
}
