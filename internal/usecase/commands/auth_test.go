//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"shuttle-service/internal/domain/user"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/pkg/jwt"
	"shuttle-service/internal/usecase/commands"
	"shuttle-service/internal/usecase/queries"
	"shuttle-service/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserReadStore struct {
	byID    map[uuid.UUID]*queries.AuthorizedUserView
	byEmail map[string]*queries.AuthenticatedUser
}

func newStubUserReadStore() *stubUserReadStore {
	return &stubUserReadStore{
		byID:    map[uuid.UUID]*queries.AuthorizedUserView{},
		byEmail: map[string]*queries.AuthenticatedUser{},
	}
}

func (s *stubUserReadStore) add(u *queries.AuthenticatedUser) {
	s.byID[u.ID] = &u.AuthorizedUserView
	s.byEmail[u.Email] = u
}

func (s *stubUserReadStore) FindByID(_ context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	view, ok := s.byID[id]
	if !ok {
		return nil, notFoundErr()
	}
	return view, nil
}

func (s *stubUserReadStore) FindByEmail(_ context.Context, email string) (*queries.AuthenticatedUser, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, notFoundErr()
	}
	return u, nil
}

func newAuthFixture() (*stubUoW, *stubUserReadStore, *jwt.Service, commands.AuthCommands) {
	uow := newStubUoW()
	readStore := newStubUserReadStore()
	jwtService := jwt.NewService("test-secret", 15*time.Minute, 24*time.Hour)
	return uow, readStore, jwtService, commands.NewAuthCommands(uow, readStore, jwtService)
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials produce a token pair", func(t *testing.T) {
		uow, readStore, jwtService, auth := newAuthFixture()
		account := builder.NewUserBuilder().BuildAuthenticated()
		readStore.add(account)

		result, err := auth.Login(context.Background(), account.Email, "password123")
		require.NoError(t, err)

		assert.Equal(t, account.ID, result.UserID)
		assert.NotEmpty(t, result.TokenPair.AccessToken)
		assert.NotEmpty(t, result.TokenPair.RefreshToken)

		claims, err := jwtService.ValidateToken(result.TokenPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, account.ID, claims.UserID)
		assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)

		assert.Equal(t, []uuid.UUID{account.ID}, uow.tx.users.lastLogins)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, readStore, _, auth := newAuthFixture()
		account := builder.NewUserBuilder().BuildAuthenticated()
		readStore.add(account)

		_, err := auth.Login(context.Background(), account.Email, "wrong-password")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("unknown email reports the same error as a bad password", func(t *testing.T) {
		_, _, _, auth := newAuthFixture()

		_, err := auth.Login(context.Background(), "nobody@example.com", "password123")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		_, readStore, _, auth := newAuthFixture()
		account := builder.NewUserBuilder().AsInactive().BuildAuthenticated()
		readStore.add(account)

		_, err := auth.Login(context.Background(), account.Email, "password123")
		assert.ErrorIs(t, err, commands.ErrUserInactive)
	})

	t.Run("malformed email fails authentication", func(t *testing.T) {
		_, _, _, auth := newAuthFixture()

		_, err := auth.Login(context.Background(), "not-an-email", "password123")
		assert.ErrorIs(t, err, commands.ErrAuthenticationFailed)
	})

	t.Run("failed last-login bookkeeping does not fail the login", func(t *testing.T) {
		uow, readStore, _, auth := newAuthFixture()
		account := builder.NewUserBuilder().BuildAuthenticated()
		readStore.add(account)
		uow.tx.users.lastLoginErr = errs.New("write failed")

		_, err := auth.Login(context.Background(), account.Email, "password123")
		assert.NoError(t, err)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Run("valid refresh token rotates the pair", func(t *testing.T) {
		_, readStore, jwtService, auth := newAuthFixture()
		account := builder.NewUserBuilder().BuildAuthenticated()
		readStore.add(account)

		refreshToken, err := jwtService.GenerateRefreshToken(account.ID, user.RoleUser)
		require.NoError(t, err)

		pair, err := auth.RefreshToken(context.Background(), refreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("access token cannot be used to refresh", func(t *testing.T) {
		_, readStore, jwtService, auth := newAuthFixture()
		account := builder.NewUserBuilder().BuildAuthenticated()
		readStore.add(account)

		accessToken, err := jwtService.GenerateAccessToken(account.ID, user.RoleUser)
		require.NoError(t, err)

		_, err = auth.RefreshToken(context.Background(), accessToken)
		assert.ErrorIs(t, err, commands.ErrTokenValidation)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, _, auth := newAuthFixture()

		_, err := auth.RefreshToken(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, commands.ErrTokenValidation)
	})

	t.Run("user deleted since issuance", func(t *testing.T) {
		_, _, jwtService, auth := newAuthFixture()

		refreshToken, err := jwtService.GenerateRefreshToken(uuid.New(), user.RoleUser)
		require.NoError(t, err)

		_, err = auth.RefreshToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("user deactivated since issuance", func(t *testing.T) {
		_, readStore, jwtService, auth := newAuthFixture()
		account := builder.NewUserBuilder().AsInactive().BuildAuthenticated()
		readStore.add(account)

		refreshToken, err := jwtService.GenerateRefreshToken(account.ID, user.RoleUser)
		require.NoError(t, err)

		_, err = auth.RefreshToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, commands.ErrUserInactive)
	})
}
