package services

import (
	"log/slog"
	"private-chat/auth"
	"private-chat/errors"
	"private-chat/mocks"
	"private-chat/repositories"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T) (*AuthService, *mocks.MockIUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, auth.NewTokenIssuer("secret", time.Hour),
		logs.GetLoggerFromLevel(slog.LevelDebug))
	return svc, mockRepo
}

func storedUser(t *testing.T, username, password string) repositories.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return repositories.User{ID: "user-uuid", Username: username, PasswordHash: hash}
}

func TestAuthService_VerifyCredentials(t *testing.T) {
	svc, mockRepo := newAuthService(t)
	ian := storedUser(t, "ian", "ian")

	t.Run("should accept the right password", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser("ian").Return(ian, nil).Times(1)

		req.True(svc.VerifyCredentials("ian", "ian"))
	})

	t.Run("should refuse a wrong password", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser("ian").Return(ian, nil).Times(1)

		req.False(svc.VerifyCredentials("ian", "dan"))
	})

	t.Run("should refuse an unknown user", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser("greg").Return(repositories.User{}, errors.ErrUserNotFound).Times(1)

		req.False(svc.VerifyCredentials("greg", "greg"))
	})

	t.Run("should not hit the repository for malformed logins", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser(gomock.Any()).Times(0)

		req.False(svc.VerifyCredentials("not valid", "x"))
		req.False(svc.VerifyCredentials("ian", ""))
	})
}

func TestAuthService_Login(t *testing.T) {
	svc, mockRepo := newAuthService(t)
	dan := storedUser(t, "dan", "dan")

	t.Run("should issue a token resolving to the username", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser("dan").Return(dan, nil).Times(1)

		token, err := svc.Login("dan", "dan")
		req.NoError(err)
		req.NotEmpty(token)

		username, err := svc.Authenticate(token.String())
		req.NoError(err)
		req.Equal("dan", username)
	})

	t.Run("should fail with invalid credentials", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUser("dan").Return(dan, nil).Times(1)

		token, err := svc.Login("dan", "wrong")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
		req.Empty(token)
	})
}

func TestAuthService_Seed(t *testing.T) {
	req := require.New(t)
	svc, mockRepo := newAuthService(t)

	// Given chris already exists
	mockRepo.EXPECT().CreateUser("chris", gomock.Any()).Return(repositories.User{}, errors.ErrUserAlreadyExists).Times(1)
	mockRepo.EXPECT().CreateUser("ian", gomock.Any()).Return(repositories.User{Username: "ian"}, nil).Times(1)

	// When the accounts are seeded
	err := svc.Seed(map[string]string{"chris": "chris", "ian": "ian"})

	// Then the existing account is kept silently
	req.NoError(err)
}

func TestAuthService_Register_Rejects_Invalid_Username(t *testing.T) {
	req := require.New(t)
	svc, mockRepo := newAuthService(t)
	mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Times(0)

	req.ErrorIs(svc.Register("bad name", "password"), errors.ErrInvalidLogin)
}
