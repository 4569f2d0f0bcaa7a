// Package auth provides the application layer for registration, login and
// Google account reconciliation
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	apprecipe "github.com/cookease/api/internal/application/recipe"
	"github.com/cookease/api/internal/domain/user"
	"github.com/cookease/api/internal/infrastructure/security"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements the authentication use cases.
type Service struct {
	users   outbound.UserRepository
	recipes outbound.RecipeRepository
	tokens  *security.TokenService
	oauth   outbound.OAuthProvider
	logger  *zap.Logger
}

// NewService creates a new authentication service.
func NewService(
	users outbound.UserRepository,
	recipes outbound.RecipeRepository,
	tokens *security.TokenService,
	oauth outbound.OAuthProvider,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:   users,
		recipes: recipes,
		tokens:  tokens,
		oauth:   oauth,
		logger:  logger.Named("auth-service"),
	}
}

// RegisterCommand contains user registration data.
type RegisterCommand struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginCommand contains user login data.
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileCommand contains profile update data. Empty fields are left
// unchanged.
type UpdateProfileCommand struct {
	Username string `json:"username" validate:"omitempty,min=3,max=30"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// UserDTO represents user data returned to clients. The password hash is
// deliberately absent.
type UserDTO struct {
	ID          uuid.UUID         `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	AuthMethods []user.AuthMethod `json:"authMethods"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// CurrentUserDTO is the profile shape: the user plus their resolved favorite
// recipes. Favorites pointing at deleted recipes are omitted.
type CurrentUserDTO struct {
	UserDTO
	FavoriteRecipes []apprecipe.RecipeDTO `json:"favoriteRecipes"`
}

// AuthResult contains a session token and the authenticated user.
type AuthResult struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
	// Upgraded is true when registration attached local credentials to an
	// existing Google-only account instead of creating a new one.
	Upgraded bool `json:"-"`
}

// Register creates a local-credential account.
//
// If the email already belongs to a Google-only account (no password), the
// call upgrades that account in place: the username is reassigned to the
// requested one after a fresh uniqueness check, the password is set, and the
// existing account id is returned.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*AuthResult, error) {
	var result *AuthResult

	err := s.users.Transaction(ctx, func(repo outbound.UserRepository) error {
		if taken, err := repo.UsernameTakenByOther(ctx, cmd.Username, uuid.Nil); err != nil {
			return fmt.Errorf("username check: %w", err)
		} else if taken {
			return user.ErrUsernameTaken
		}

		existing, err := repo.FindByEmail(ctx, cmd.Email)
		switch {
		case err == nil && existing.GoogleID() != "" && !existing.HasLocalAuth():
			// Google-only account with the same email: add local credentials.
			if taken, err := repo.UsernameTakenByOther(ctx, cmd.Username, existing.ID()); err != nil {
				return fmt.Errorf("username check: %w", err)
			} else if taken {
				return user.ErrUsernameTaken
			}
			if err := existing.Rename(cmd.Username); err != nil {
				return err
			}
			if err := existing.SetPassword(cmd.Password); err != nil {
				return err
			}
			if err := repo.Update(ctx, existing); err != nil {
				return fmt.Errorf("save upgraded account: %w", err)
			}
			res, err := s.authResult(existing)
			if err != nil {
				return err
			}
			res.Upgraded = true
			result = res
			s.logger.Info("local auth added to google account",
				zap.String("user_id", existing.ID().String()))
			return nil

		case err == nil:
			return user.ErrEmailTaken

		case !errors.Is(err, user.ErrUserNotFound):
			return fmt.Errorf("email lookup: %w", err)

		default:
			newUser, err := user.NewUser(cmd.Username, cmd.Email, cmd.Password)
			if err != nil {
				return err
			}
			if err := repo.Create(ctx, newUser); err != nil {
				return fmt.Errorf("save user: %w", err)
			}
			res, err := s.authResult(newUser)
			if err != nil {
				return err
			}
			result = res
			s.logger.Info("user registered", zap.String("user_id", newUser.ID().String()))
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Login authenticates local credentials and issues a session token.
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, user.ErrInvalidCredentials
	}

	if !u.HasLocalAuth() {
		return nil, user.ErrNoLocalAuth
	}

	if err := u.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("failed login attempt", zap.String("email", u.Email()))
		return nil, user.ErrInvalidCredentials
	}

	return s.authResult(u)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

// CurrentUser returns the profile for an authenticated id, with the
// favorite recipes resolved against the catalog.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*CurrentUserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorites := make([]apprecipe.RecipeDTO, 0)
	if ids := u.FavoriteRecipeIDs(); len(ids) > 0 {
		recipes, err := s.recipes.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve favorites: %w", err)
		}
		for _, rec := range recipes {
			favorites = append(favorites, apprecipe.ToDTO(rec))
		}
	}

	return &CurrentUserDTO{UserDTO: toDTO(u), FavoriteRecipes: favorites}, nil
}

// UpdateProfile changes the username and/or password of an account. Setting
// a password on a Google-only account adds the local auth capability.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, cmd UpdateProfileCommand) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cmd.Username != "" {
		if taken, err := s.users.UsernameTakenByOther(ctx, cmd.Username, userID); err != nil {
			return nil, fmt.Errorf("username check: %w", err)
		} else if taken {
			return nil, user.ErrUsernameTaken
		}
		if err := u.Rename(cmd.Username); err != nil {
			return nil, err
		}
	}
	if cmd.Password != "" {
		if err := u.SetPassword(cmd.Password); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	dto := toDTO(u)
	return &dto, nil
}

// LoginURL returns the provider URL that starts the Google OAuth flow.
func (s *Service) LoginURL(state string) string {
	return s.oauth.LoginURL(state)
}

// HandleGoogleCallback exchanges an authorization code and reconciles the
// asserted identity, returning a session token for the resulting account.
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*AuthResult, error) {
	profile, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", err)
	}
	u, err := s.Reconcile(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s.authResult(u)
}

// Reconcile applies the account-merge state machine for an OAuth identity:
//
//	no user for email            -> create a Google-only account
//	user without googleID        -> link, keeping password and username
//	user with same googleID      -> no-op
//	user with different googleID -> reject, mutating nothing
//
// The lookup and the conditional write run in one repository transaction so
// concurrent callbacks for the same new email cannot both create an account;
// the unique email index backstops the race.
func (s *Service) Reconcile(ctx context.Context, profile *outbound.OAuthProfile) (*user.User, error) {
	var reconciled *user.User

	err := s.users.Transaction(ctx, func(repo outbound.UserRepository) error {
		existing, err := repo.FindByEmail(ctx, profile.Email)
		if errors.Is(err, user.ErrUserNotFound) {
			created, err := user.NewGoogleUser(profile.ExternalID, profile.Email, profile.DisplayName)
			if err != nil {
				return err
			}
			if err := repo.Create(ctx, created); err != nil {
				return fmt.Errorf("create google account: %w", err)
			}
			s.logger.Info("google account created", zap.String("user_id", created.ID().String()))
			reconciled = created
			return nil
		}
		if err != nil {
			return fmt.Errorf("email lookup: %w", err)
		}

		linkedBefore := existing.GoogleID() != ""
		if err := existing.LinkGoogleAccount(profile.ExternalID); err != nil {
			return err
		}
		if !linkedBefore {
			if err := repo.Update(ctx, existing); err != nil {
				return fmt.Errorf("link google account: %w", err)
			}
			s.logger.Info("google auth linked to existing account",
				zap.String("user_id", existing.ID().String()))
		}
		reconciled = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reconciled, nil
}

func (s *Service) authResult(u *user.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: toDTO(u), Token: token}, nil
}

func toDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:          u.ID(),
		Username:    u.Username(),
		Email:       u.Email(),
		AuthMethods: u.AuthMethods(),
		CreatedAt:   u.CreatedAt(),
	}
}
