package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/klarkent2022/smart-irrigation/internal/models"
	"github.com/klarkent2022/smart-irrigation/internal/repository"
	"github.com/klarkent2022/smart-irrigation/internal/repository/repositorytest"
	"github.com/klarkent2022/smart-irrigation/internal/services"
	"github.com/klarkent2022/smart-irrigation/internal/utils"
)

func newUserService(t *testing.T) (*services.UserService, *repositorytest.Users, *utils.TokenService) {
	t.Helper()
	tokens, err := utils.NewTokenService("test-secret", 0)
	require.NoError(t, err)
	repo := repositorytest.NewUsers()
	return services.NewUserService(repo, tokens, bcrypt.MinCost, zap.NewNop()), repo, tokens
}

func register(t *testing.T, svc *services.UserService, username, email, password string) {
	t.Helper()
	require.NoError(t, svc.Register(context.Background(), models.RegisterRequest{
		Username: username, Email: email, Password: password,
	}))
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hashed password", func(t *testing.T) {
		svc, repo, _ := newUserService(t)
		register(t, svc, "alice", "alice@example.com", "pw1")

		u, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.NotEqual(t, "pw1", u.HashedPassword)
		assert.True(t, utils.CheckPassword("pw1", u.HashedPassword))
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _, _ := newUserService(t)
		register(t, svc, "alice", "alice@example.com", "pw1")

		err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "pw2"})
		assert.ErrorIs(t, err, services.ErrConflict)
		assert.EqualError(t, err, "Username already exists")
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _, _ := newUserService(t)
		register(t, svc, "alice", "alice@example.com", "pw1")

		err := svc.Register(ctx, models.RegisterRequest{Username: "bob", Email: "alice@example.com", Password: "pw2"})
		assert.ErrorIs(t, err, services.ErrConflict)
	})

	t.Run("invalid request", func(t *testing.T) {
		svc, _, _ := newUserService(t)
		err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "pw"})
		assert.ErrorIs(t, err, services.ErrValidation)
	})

	t.Run("multibyte password over the byte limit", func(t *testing.T) {
		svc, repo, _ := newUserService(t)
		// 40 characters, 80 bytes
		err := svc.Register(ctx, models.RegisterRequest{Username: "u", Email: "u@example.com", Password: strings.Repeat("é", 40)})
		assert.ErrorIs(t, err, services.ErrValidation)
		assert.EqualError(t, err, "password must be at most 72 bytes")

		_, err = repo.FindByUsername(ctx, "u")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("multibyte password within the byte limit", func(t *testing.T) {
		svc, _, _ := newUserService(t)
		register(t, svc, "u", "u@example.com", strings.Repeat("é", 36))
		_, err := svc.Login(ctx, models.LoginRequest{Email: "u@example.com", Password: strings.Repeat("é", 36)})
		assert.NoError(t, err)
	})

	t.Run("store failure is not a domain error", func(t *testing.T) {
		svc, repo, _ := newUserService(t)
		repo.Err = errors.New("connection reset")
		err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "pw"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, services.ErrConflict)
		assert.NotErrorIs(t, err, services.ErrValidation)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newUserService(t)
	register(t, svc, "alice", "alice@example.com", "pw1")

	t.Run("success returns a verifiable token", func(t *testing.T) {
		resp, err := svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "pw1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, "alice@example.com", resp.Email)

		claims, err := tokens.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "pw1"})
		assert.ErrorIs(t, err, services.ErrNotFound)
		assert.EqualError(t, err, "User not found")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "nope"})
		assert.ErrorIs(t, err, services.ErrUnauthorized)
		assert.EqualError(t, err, "Invalid password")
	})
}

func TestUserService_CurrentUser(t *testing.T) {
	svc, _, _ := newUserService(t)

	id, err := svc.CurrentUser(&utils.Claims{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.Identity{Username: "alice", Email: "alice@example.com"}, *id)

	_, err = svc.CurrentUser(&utils.Claims{Email: "alice@example.com"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = svc.CurrentUser(nil)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}
