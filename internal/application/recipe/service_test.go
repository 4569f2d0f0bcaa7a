package recipe_test

import (
	"context"
	"testing"

	apprecipe "github.com/cookease/api/internal/application/recipe"
	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/domain/user"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/cookease/api/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recipeFixture struct {
	svc     *apprecipe.Service
	recipes *testutils.InMemoryRecipeRepository
	users   *testutils.InMemoryUserRepository
	cache   *testutils.InMemoryCache
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()
	f := &recipeFixture{
		recipes: testutils.NewInMemoryRecipeRepository(),
		users:   testutils.NewInMemoryUserRepository(),
		cache:   testutils.NewInMemoryCache(),
	}
	f.svc = apprecipe.NewService(f.recipes, f.users, f.cache, zap.NewNop())
	return f
}

func (f *recipeFixture) seedUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.NewUser("alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *recipeFixture) seedRecipe(t *testing.T, title, country, main string, rating float64, allergens ...string) *recipe.Recipe {
	t.Helper()
	rec := testutils.MakeRecipe(title, country, main, rating, allergens...)
	require.NoError(t, f.recipes.Create(context.Background(), rec))
	return rec
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)

	created, err := f.svc.Create(ctx, apprecipe.CreateCommand{
		Title:          "Pad Thai",
		Description:    "Stir-fried rice noodles",
		Country:        "Thailand",
		MainIngredient: "noodles",
		Rating:         4.5,
		Allergens:      []string{"peanuts", "peanuts", "shellfish"},
		Ingredients: []apprecipe.IngredientRefDTO{
			{RefID: "ing-noodles", Name: "Rice noodles", Quantity: "200g"},
		},
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", got.Title)
	assert.Equal(t, []string{"peanuts", "shellfish"}, got.Allergens, "allergens are deduplicated")
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "ing-noodles", got.Ingredients[0].RefID)
}

func TestCreateValidation(t *testing.T) {
	f := newRecipeFixture(t)

	_, err := f.svc.Create(context.Background(), apprecipe.CreateCommand{
		Description:    "missing title",
		Country:        "Japan",
		MainIngredient: "rice",
	})
	assert.ErrorIs(t, err, recipe.ErrTitleRequired)
}

func TestGetUnknownRecipe(t *testing.T) {
	f := newRecipeFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	f.seedRecipe(t, "Sushi", "Japan", "fish", 4.8)
	f.seedRecipe(t, "Ramen", "Japan", "noodles", 4.2, "gluten")
	f.seedRecipe(t, "Tacos", "Mexico", "beef", 4.0)

	t.Run("by country", func(t *testing.T) {
		out, err := f.svc.Filter(ctx, outbound.RecipeFilter{Countries: []string{"Japan"}})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("excluding allergens", func(t *testing.T) {
		out, err := f.svc.Filter(ctx, outbound.RecipeFilter{
			Countries:        []string{"Japan"},
			ExcludeAllergens: []string{"gluten"},
		})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Sushi", out[0].Title)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	f.seedRecipe(t, "Chicken Curry", "India", "chicken", 4.6)
	f.seedRecipe(t, "Chicken Soup", "France", "chicken", 4.1)
	f.seedRecipe(t, "Beef Stew", "Ireland", "beef", 4.3)

	result, err := f.svc.Search(ctx, "chicken", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Total)
	assert.Len(t, result.Recipes, 2)

	paged, err := f.svc.Search(ctx, "chicken", 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, paged.Total)
	require.Len(t, paged.Recipes, 1)
	assert.Equal(t, "Chicken Soup", paged.Recipes[0].Title)
}

func TestFilterOptionsCaching(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	f.seedRecipe(t, "Sushi", "Japan", "fish", 4.8, "fish")

	options, err := f.svc.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Japan"}, options.Countries)

	// A second read comes from the cache, so a direct repository write is
	// invisible until the cache is invalidated.
	f.seedRecipe(t, "Tacos", "Mexico", "beef", 4.0)
	cached, err := f.svc.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Japan"}, cached.Countries)

	// A catalog write through the service invalidates the cache.
	_, err = f.svc.Create(ctx, apprecipe.CreateCommand{
		Title:          "Pho",
		Description:    "Noodle soup",
		Country:        "Vietnam",
		MainIngredient: "noodles",
	})
	require.NoError(t, err)

	fresh, err := f.svc.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Japan", "Mexico", "Vietnam"}, fresh.Countries)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle on then off", func(t *testing.T) {
		f := newRecipeFixture(t)
		u := f.seedUser(t)
		rec := f.seedRecipe(t, "Sushi", "Japan", "fish", 4.8)

		on, err := f.svc.ToggleFavorite(ctx, u.ID(), rec.ID())
		require.NoError(t, err)
		assert.True(t, on.IsFavorited)
		require.Len(t, on.FavoriteRecipes, 1)
		assert.Equal(t, rec.ID(), on.FavoriteRecipes[0].ID)

		off, err := f.svc.ToggleFavorite(ctx, u.ID(), rec.ID())
		require.NoError(t, err)
		assert.False(t, off.IsFavorited)
		assert.Empty(t, off.FavoriteRecipes)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		f := newRecipeFixture(t)
		u := f.seedUser(t)

		_, err := f.svc.ToggleFavorite(ctx, u.ID(), uuid.New())
		assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newRecipeFixture(t)
		rec := f.seedRecipe(t, "Sushi", "Japan", "fish", 4.8)

		_, err := f.svc.ToggleFavorite(ctx, uuid.New(), rec.ID())
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestFavoriteRecipesSkipsDeleted(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	u := f.seedUser(t)
	kept := f.seedRecipe(t, "Sushi", "Japan", "fish", 4.8)
	doomed := f.seedRecipe(t, "Ramen", "Japan", "noodles", 4.2)

	_, err := f.svc.ToggleFavorite(ctx, u.ID(), kept.ID())
	require.NoError(t, err)
	_, err = f.svc.ToggleFavorite(ctx, u.ID(), doomed.ID())
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, doomed.ID()))

	favorites, err := f.svc.FavoriteRecipes(ctx, u.ID())
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, kept.ID(), favorites[0].ID)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newRecipeFixture(t)
	rec := f.seedRecipe(t, "Sushi", "Japan", "fish", 4.8)

	updated, err := f.svc.Update(ctx, rec.ID(), apprecipe.CreateCommand{
		Title:          "Sushi Deluxe",
		Description:    "Premium cut",
		Country:        "Japan",
		MainIngredient: "fish",
		Rating:         5,
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), updated.ID)
	assert.Equal(t, "Sushi Deluxe", updated.Title)

	require.NoError(t, f.svc.Delete(ctx, rec.ID()))
	_, err = f.svc.Get(ctx, rec.ID())
	assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)
}
