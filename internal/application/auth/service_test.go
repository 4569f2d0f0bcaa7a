package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/cookease/api/internal/application/auth"
	"github.com/cookease/api/internal/domain/user"
	"github.com/cookease/api/internal/infrastructure/config"
	"github.com/cookease/api/internal/infrastructure/security"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/cookease/api/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*auth.Service, *testutils.InMemoryUserRepository, *testutils.StubOAuthProvider) {
	svc, users, _, oauth := newAuthServiceWithRecipes(t)
	return svc, users, oauth
}

func newAuthServiceWithRecipes(t *testing.T) (*auth.Service, *testutils.InMemoryUserRepository, *testutils.InMemoryRecipeRepository, *testutils.StubOAuthProvider) {
	t.Helper()
	users := testutils.NewInMemoryUserRepository()
	recipes := testutils.NewInMemoryRecipeRepository()
	oauth := &testutils.StubOAuthProvider{}
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.JWTExpiration = time.Hour
	tokens := security.NewTokenService(cfg, zap.NewNop())
	svc := auth.NewService(users, recipes, tokens, oauth, zap.NewNop())
	return svc, users, recipes, oauth
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates local account and issues token", func(t *testing.T) {
		svc, users, _ := newAuthService(t)

		result, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "alice", result.User.Username)
		assert.Equal(t, "alice@example.com", result.User.Email)
		assert.Equal(t, []user.AuthMethod{user.AuthMethodLocal}, result.User.AuthMethods)
		assert.False(t, result.Upgraded)
		assert.Equal(t, 1, users.Count())
	})

	t.Run("rejects taken username", func(t *testing.T) {
		svc, _, _ := newAuthService(t)

		_, err := svc.Register(ctx, auth.RegisterCommand{Username: "alice", Email: "a@example.com", Password: "password123"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, auth.RegisterCommand{Username: "alice", Email: "b@example.com", Password: "password123"})
		assert.ErrorIs(t, err, user.ErrUsernameTaken)
	})

	t.Run("rejects taken email with local credentials", func(t *testing.T) {
		svc, _, _ := newAuthService(t)

		_, err := svc.Register(ctx, auth.RegisterCommand{Username: "alice", Email: "alice@example.com", Password: "password123"})
		require.NoError(t, err)

		_, err = svc.Register(ctx, auth.RegisterCommand{Username: "alice2", Email: "alice@example.com", Password: "password123"})
		assert.ErrorIs(t, err, user.ErrEmailTaken)
	})

	t.Run("upgrades google-only account in place", func(t *testing.T) {
		svc, users, oauth := newAuthService(t)

		oauth.Profile = &outbound.OAuthProfile{
			ExternalID:  "google-123",
			Email:       "carol@example.com",
			DisplayName: "Carol",
		}
		googleUser, err := svc.Reconcile(ctx, oauth.Profile)
		require.NoError(t, err)

		result, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "carol_cooks",
			Email:    "carol@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.True(t, result.Upgraded)
		assert.Equal(t, googleUser.ID(), result.User.ID)
		assert.Equal(t, "carol_cooks", result.User.Username)
		assert.ElementsMatch(t,
			[]user.AuthMethod{user.AuthMethodLocal, user.AuthMethodGoogle},
			result.User.AuthMethods)
		assert.Equal(t, 1, users.Count())

		// The new password works and the Google link survived.
		login, err := svc.Login(ctx, auth.LoginCommand{Email: "carol@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, googleUser.ID(), login.User.ID)
		stored, err := users.FindByID(ctx, googleUser.ID())
		require.NoError(t, err)
		assert.Equal(t, "google-123", stored.GoogleID())
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, svc *auth.Service) {
		t.Helper()
		_, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		register(t, svc)

		result, err := svc.Login(ctx, auth.LoginCommand{Email: "alice@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "alice", result.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		register(t, svc)

		_, err := svc.Login(ctx, auth.LoginCommand{Email: "alice@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _, _ := newAuthService(t)

		_, err := svc.Login(ctx, auth.LoginCommand{Email: "nobody@example.com", Password: "password123"})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("google-only account has no password to check", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Reconcile(ctx, &outbound.OAuthProfile{
			ExternalID: "google-9",
			Email:      "bob@example.com",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, auth.LoginCommand{Email: "bob@example.com", Password: "anything123"})
		assert.ErrorIs(t, err, user.ErrNoLocalAuth)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		result, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		u, err := svc.Authenticate(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, u.ID())
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	profile := &outbound.OAuthProfile{
		ExternalID:  "google-123",
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}

	t.Run("creates account on first callback", func(t *testing.T) {
		svc, users, _ := newAuthService(t)

		u, err := svc.Reconcile(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "google-123", u.GoogleID())
		assert.Equal(t, "Alice", u.Username())
		assert.False(t, u.HasLocalAuth())
		assert.Equal(t, 1, users.Count())
	})

	t.Run("links google id to existing local account", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		registered, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		u, err := svc.Reconcile(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, u.ID())
		assert.Equal(t, "google-123", u.GoogleID())
		assert.True(t, u.HasLocalAuth())
		assert.Equal(t, 1, users.CountByEmail("alice@example.com"))

		// Local login still works after the merge.
		_, err = svc.Login(ctx, auth.LoginCommand{Email: "alice@example.com", Password: "password123"})
		require.NoError(t, err)
	})

	t.Run("repeat callback is a no-op", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		first, err := svc.Reconcile(ctx, profile)
		require.NoError(t, err)

		second, err := svc.Reconcile(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, first.ID(), second.ID())
		assert.Equal(t, 1, users.Count())
	})

	t.Run("rejects conflicting google id", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		first, err := svc.Reconcile(ctx, profile)
		require.NoError(t, err)

		_, err = svc.Reconcile(ctx, &outbound.OAuthProfile{
			ExternalID: "google-456",
			Email:      "alice@example.com",
		})
		assert.ErrorIs(t, err, user.ErrGoogleIDMismatch)

		stored, err := users.FindByID(ctx, first.ID())
		require.NoError(t, err)
		assert.Equal(t, "google-123", stored.GoogleID())
	})
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves favorite recipes", func(t *testing.T) {
		svc, users, recipes, _ := newAuthServiceWithRecipes(t)

		result, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		sushi := testutils.MakeRecipe("Sushi", "Japan", "fish", 4.8)
		tacos := testutils.MakeRecipe("Tacos", "Mexico", "beef", 4.5)
		require.NoError(t, recipes.Create(ctx, sushi))
		require.NoError(t, recipes.Create(ctx, tacos))
		require.NoError(t, users.AddFavorite(ctx, result.User.ID, sushi.ID()))
		require.NoError(t, users.AddFavorite(ctx, result.User.ID, tacos.ID()))

		dto, err := svc.CurrentUser(ctx, result.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", dto.Username)
		require.Len(t, dto.FavoriteRecipes, 2)
		assert.Equal(t, "Sushi", dto.FavoriteRecipes[0].Title)
		assert.Equal(t, "Tacos", dto.FavoriteRecipes[1].Title)
	})

	t.Run("skips favorites of deleted recipes", func(t *testing.T) {
		svc, users, recipes, _ := newAuthServiceWithRecipes(t)

		result, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		sushi := testutils.MakeRecipe("Sushi", "Japan", "fish", 4.8)
		tacos := testutils.MakeRecipe("Tacos", "Mexico", "beef", 4.5)
		require.NoError(t, recipes.Create(ctx, sushi))
		require.NoError(t, recipes.Create(ctx, tacos))
		require.NoError(t, users.AddFavorite(ctx, result.User.ID, sushi.ID()))
		require.NoError(t, users.AddFavorite(ctx, result.User.ID, tacos.ID()))
		require.NoError(t, recipes.Delete(ctx, tacos.ID()))

		dto, err := svc.CurrentUser(ctx, result.User.ID)
		require.NoError(t, err)
		require.Len(t, dto.FavoriteRecipes, 1)
		assert.Equal(t, "Sushi", dto.FavoriteRecipes[0].Title)
	})

	t.Run("no favorites yields an empty list", func(t *testing.T) {
		svc, _, _, _ := newAuthServiceWithRecipes(t)

		result, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		dto, err := svc.CurrentUser(ctx, result.User.ID)
		require.NoError(t, err)
		assert.NotNil(t, dto.FavoriteRecipes)
		assert.Empty(t, dto.FavoriteRecipes)
	})
}

func TestEmailLookupFailurePropagates(t *testing.T) {
	ctx := context.Background()

	t.Run("register", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.FindByEmailErr = assert.AnError

		_, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, user.ErrEmailTaken)
		assert.Equal(t, 0, users.Count())
	})

	t.Run("reconcile", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.FindByEmailErr = assert.AnError

		_, err := svc.Reconcile(ctx, &outbound.OAuthProfile{
			ExternalID:  "google-123",
			Email:       "alice@example.com",
			DisplayName: "Alice",
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 0, users.Count())
	})
}

func TestHandleGoogleCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("exchanges code and issues token", func(t *testing.T) {
		svc, _, oauth := newAuthService(t)
		oauth.Profile = &outbound.OAuthProfile{
			ExternalID:  "google-777",
			Email:       "dave@example.com",
			DisplayName: "Dave",
		}

		result, err := svc.HandleGoogleCallback(ctx, "auth-code")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "dave@example.com", result.User.Email)

		u, err := svc.Authenticate(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, u.ID())
	})

	t.Run("propagates exchange failure", func(t *testing.T) {
		svc, _, oauth := newAuthService(t)
		oauth.Err = assert.AnError

		_, err := svc.HandleGoogleCallback(ctx, "bad-code")
		assert.Error(t, err)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("renames and changes password", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		registered, err := svc.Register(ctx, auth.RegisterCommand{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.NoError(t, err)

		dto, err := svc.UpdateProfile(ctx, registered.User.ID, auth.UpdateProfileCommand{
			Username: "alice_v2",
			Password: "newpassword456",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice_v2", dto.Username)

		_, err = svc.Login(ctx, auth.LoginCommand{Email: "alice@example.com", Password: "newpassword456"})
		require.NoError(t, err)
		_, err = svc.Login(ctx, auth.LoginCommand{Email: "alice@example.com", Password: "password123"})
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("rejects username held by another user", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, auth.RegisterCommand{Username: "alice", Email: "a@example.com", Password: "password123"})
		require.NoError(t, err)
		registered, err := svc.Register(ctx, auth.RegisterCommand{Username: "bob", Email: "b@example.com", Password: "password123"})
		require.NoError(t, err)

		_, err = svc.UpdateProfile(ctx, registered.User.ID, auth.UpdateProfileCommand{Username: "alice"})
		assert.ErrorIs(t, err, user.ErrUsernameTaken)
	})
}
