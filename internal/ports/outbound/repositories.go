// Package outbound defines the interfaces for outbound ports (driven adapters).
// These are the interfaces the application layer uses to reach external systems.
package outbound

import (
	"context"
	"time"

	"github.com/cookease/api/internal/domain/ingredient"
	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/domain/user"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
//
// Favorites and cart lines are persisted through dedicated atomic operations
// rather than whole-document saves, so concurrent requests for the same user
// cannot clobber each other's writes.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Update(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	// UsernameTakenByOther reports whether any user other than excludeID holds
	// the username. Used by the signup upgrade path and profile updates.
	UsernameTakenByOther(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)

	// Transaction runs fn against a repository bound to a single database
	// transaction. The Google reconciliation lookup-then-branch sequence runs
	// inside it so two concurrent callbacks for the same email cannot both
	// create an account.
	Transaction(ctx context.Context, fn func(repo UserRepository) error) error

	// Favorite set operations, atomic at the storage layer.
	AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error
	Favorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// Cart operations, atomic at the storage layer. UpsertCartLine increments
	// the quantity of an existing line for the same ingredient instead of
	// inserting a duplicate, and returns the resulting line.
	UpsertCartLine(ctx context.Context, userID uuid.UUID, line user.CartLine) (user.CartLine, error)
	SetCartLineQuantity(ctx context.Context, userID uuid.UUID, ingredientID string, quantity int) (user.CartLine, error)
	DeleteCartLine(ctx context.Context, userID uuid.UUID, ingredientID string) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
	CartLines(ctx context.Context, userID uuid.UUID) ([]user.CartLine, error)
}

// RecipeFilter narrows catalog queries. Countries and MainIngredients are
// OR-ed within themselves; ExcludeAllergens removes any recipe listing one
// of the given allergens.
type RecipeFilter struct {
	Countries        []string
	MainIngredients  []string
	ExcludeAllergens []string
}

// FilterOptions is the distinct-value aggregate backing the catalog's
// filter UI.
type FilterOptions struct {
	Countries       []string `json:"countries"`
	MainIngredients []string `json:"mainIngredients"`
	Allergens       []string `json:"allergens"`
}

// RecipeRepository defines the interface for recipe persistence.
type RecipeRepository interface {
	Create(ctx context.Context, r *recipe.Recipe) error
	Update(ctx context.Context, r *recipe.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
	FindAll(ctx context.Context) ([]*recipe.Recipe, error)
	// FindByIDs returns the recipes that exist among ids; unknown ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error)
	Filter(ctx context.Context, filter RecipeFilter) ([]*recipe.Recipe, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*recipe.Recipe, int64, error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
}

// IngredientRepository defines the interface for ingredient persistence.
type IngredientRepository interface {
	Create(ctx context.Context, ing *ingredient.Ingredient) error
	FindByID(ctx context.Context, id string) (*ingredient.Ingredient, error)
	FindAll(ctx context.Context) ([]*ingredient.Ingredient, error)
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TextGenerator is the opaque text-completion capability used for recipe
// recommendations: prompt in, free-form text out. Implementations bound the
// call with their own timeout; callers treat any error as "generation
// unavailable".
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OAuthProfile is the identity asserted by an external OAuth provider.
type OAuthProfile struct {
	ExternalID  string
	Email       string
	DisplayName string
}

// OAuthProvider abstracts the OAuth code-exchange flow.
type OAuthProvider interface {
	LoginURL(state string) string
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}
