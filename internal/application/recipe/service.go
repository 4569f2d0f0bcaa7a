// Package recipe implements recipe catalog use cases: browsing, filtering,
// search, and per-user favorites.
package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	filterOptionsCacheKey = "recipes:filter-options"
	filterOptionsCacheTTL = 10 * time.Minute
)

// Service implements recipe catalog and favorites use cases.
type Service struct {
	recipes outbound.RecipeRepository
	users   outbound.UserRepository
	cache   outbound.CacheRepository
	logger  *zap.Logger
}

// NewService creates a new recipe service.
func NewService(
	recipes outbound.RecipeRepository,
	users outbound.UserRepository,
	cache outbound.CacheRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipes: recipes,
		users:   users,
		cache:   cache,
		logger:  logger.Named("recipe-service"),
	}
}

// IngredientRefDTO is one recipe ingredient line.
type IngredientRefDTO struct {
	RefID    string `json:"refId" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity"`
}

// RecipeDTO represents a recipe returned to clients.
type RecipeDTO struct {
	ID             uuid.UUID          `json:"id"`
	Title          string             `json:"title"`
	Image          string             `json:"image"`
	Description    string             `json:"description"`
	Country        string             `json:"country"`
	MainIngredient string             `json:"mainIngredient"`
	Allergens      []string           `json:"allergens"`
	CookTime       string             `json:"cookTime"`
	Rating         float64            `json:"rating"`
	Ingredients    []IngredientRefDTO `json:"ingredients"`
	Instructions   string             `json:"instructions"`
	Nutrition      map[string]string  `json:"nutrition"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// CreateCommand contains the data for a new recipe.
type CreateCommand struct {
	Title          string             `json:"title" validate:"required"`
	Image          string             `json:"image"`
	Description    string             `json:"description" validate:"required"`
	Country        string             `json:"country" validate:"required"`
	MainIngredient string             `json:"mainIngredient" validate:"required"`
	Allergens      []string           `json:"allergens"`
	CookTime       string             `json:"cookTime"`
	Rating         float64            `json:"rating" validate:"gte=0,lte=5"`
	Ingredients    []IngredientRefDTO `json:"ingredients"`
	Instructions   string             `json:"instructions"`
	Nutrition      map[string]string  `json:"nutrition"`
}

// SearchResult is one page of search matches.
type SearchResult struct {
	Recipes []RecipeDTO `json:"recipes"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// FavoriteResult reports the outcome of a favorite toggle.
type FavoriteResult struct {
	IsFavorited     bool        `json:"isFavorited"`
	FavoriteRecipes []RecipeDTO `json:"favoriteRecipes"`
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]RecipeDTO, error) {
	recipes, err := s.recipes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return toDTOs(recipes), nil
}

// Get returns a single recipe by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*RecipeDTO, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(rec)
	return &dto, nil
}

// Create adds a recipe to the catalog and invalidates the filter-options
// cache.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*RecipeDTO, error) {
	rec, err := recipe.NewRecipe(cmd.Title, cmd.Image, cmd.Description,
		cmd.Country, cmd.MainIngredient, cmd.CookTime, cmd.Instructions, cmd.Rating)
	if err != nil {
		return nil, err
	}
	rec.SetAllergens(cmd.Allergens)
	rec.SetIngredients(toDomainIngredients(cmd.Ingredients))
	rec.SetNutrition(cmd.Nutrition)

	if err := s.recipes.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	s.invalidateFilterOptions(ctx)

	s.logger.Info("recipe created",
		zap.String("recipe_id", rec.ID().String()),
		zap.String("title", rec.Title()))

	dto := ToDTO(rec)
	return &dto, nil
}

// Update replaces a recipe's content and invalidates the filter-options
// cache.
func (s *Service) Update(ctx context.Context, id uuid.UUID, cmd CreateCommand) (*RecipeDTO, error) {
	existing, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := recipe.NewRecipe(cmd.Title, cmd.Image, cmd.Description,
		cmd.Country, cmd.MainIngredient, cmd.CookTime, cmd.Instructions, cmd.Rating)
	if err != nil {
		return nil, err
	}
	updated.SetAllergens(cmd.Allergens)
	updated.SetIngredients(toDomainIngredients(cmd.Ingredients))
	updated.SetNutrition(cmd.Nutrition)

	rec := recipe.Rehydrate(existing.ID(), updated.Title(), updated.Image(),
		updated.Description(), updated.Country(), updated.MainIngredient(),
		updated.CookTime(), updated.Instructions(), updated.Rating(),
		updated.Allergens(), updated.Ingredients(), updated.Nutrition(),
		existing.CreatedAt(), time.Now())

	if err := s.recipes.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	s.invalidateFilterOptions(ctx)

	dto := ToDTO(rec)
	return &dto, nil
}

// Delete removes a recipe. Favorites referencing it become dangling and are
// skipped when favorites are resolved.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateFilterOptions(ctx)
	return nil
}

// Filter returns recipes matching the given country / main-ingredient /
// allergen criteria.
func (s *Service) Filter(ctx context.Context, filter outbound.RecipeFilter) ([]RecipeDTO, error) {
	recipes, err := s.recipes.Filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("filter recipes: %w", err)
	}
	return toDTOs(recipes), nil
}

// Search returns a page of recipes whose title or description matches the
// query.
func (s *Service) Search(ctx context.Context, query string, page, limit int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	recipes, total, err := s.recipes.Search(ctx, query, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return &SearchResult{
		Recipes: toDTOs(recipes),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// FilterOptions returns the distinct countries, main ingredients, and
// allergens present in the catalog. The aggregate is cached.
func (s *Service) FilterOptions(ctx context.Context) (*outbound.FilterOptions, error) {
	if cached, err := s.cache.Get(ctx, filterOptionsCacheKey); err == nil {
		var options outbound.FilterOptions
		if err := json.Unmarshal(cached, &options); err == nil {
			return &options, nil
		}
	}

	options, err := s.recipes.FilterOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("filter options: %w", err)
	}

	if payload, err := json.Marshal(options); err == nil {
		if err := s.cache.Set(ctx, filterOptionsCacheKey, payload, filterOptionsCacheTTL); err != nil {
			s.logger.Warn("filter options cache write failed", zap.Error(err))
		}
	}
	return options, nil
}

// ToggleFavorite flips the user's membership for the recipe and returns the
// new membership state together with the resolved favorite set.
func (s *Service) ToggleFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*FavoriteResult, error) {
	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return nil, err
	}

	current, err := s.users.Favorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorited := containsID(current, recipeID)

	if favorited {
		err = s.users.RemoveFavorite(ctx, userID, recipeID)
	} else {
		err = s.users.AddFavorite(ctx, userID, recipeID)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}

	favorites, err := s.resolveFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &FavoriteResult{IsFavorited: !favorited, FavoriteRecipes: favorites}, nil
}

// FavoriteRecipes resolves the user's favorite set to full records. Dangling
// references to deleted recipes are skipped.
func (s *Service) FavoriteRecipes(ctx context.Context, userID uuid.UUID) ([]RecipeDTO, error) {
	return s.resolveFavorites(ctx, userID)
}

func (s *Service) resolveFavorites(ctx context.Context, userID uuid.UUID) ([]RecipeDTO, error) {
	ids, err := s.users.Favorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve favorites: %w", err)
	}
	return toDTOs(recipes), nil
}

func (s *Service) invalidateFilterOptions(ctx context.Context) {
	if err := s.cache.Delete(ctx, filterOptionsCacheKey); err != nil {
		s.logger.Warn("filter options cache invalidation failed", zap.Error(err))
	}
}

// ToDTO maps a recipe entity to its client representation.
func ToDTO(rec *recipe.Recipe) RecipeDTO {
	ingredients := make([]IngredientRefDTO, 0, len(rec.Ingredients()))
	for _, ing := range rec.Ingredients() {
		ingredients = append(ingredients, IngredientRefDTO{
			RefID:    ing.RefID,
			Name:     ing.Name,
			Quantity: ing.Quantity,
		})
	}
	return RecipeDTO{
		ID:             rec.ID(),
		Title:          rec.Title(),
		Image:          rec.Image(),
		Description:    rec.Description(),
		Country:        rec.Country(),
		MainIngredient: rec.MainIngredient(),
		Allergens:      rec.Allergens(),
		CookTime:       rec.CookTime(),
		Rating:         rec.Rating(),
		Ingredients:    ingredients,
		Instructions:   rec.Instructions(),
		Nutrition:      rec.Nutrition(),
		CreatedAt:      rec.CreatedAt(),
	}
}

func toDTOs(recipes []*recipe.Recipe) []RecipeDTO {
	out := make([]RecipeDTO, 0, len(recipes))
	for _, rec := range recipes {
		out = append(out, ToDTO(rec))
	}
	return out
}

func toDomainIngredients(refs []IngredientRefDTO) []recipe.Ingredient {
	out := make([]recipe.Ingredient, 0, len(refs))
	for _, ref := range refs {
		out = append(out, recipe.Ingredient{
			RefID:    ref.RefID,
			Name:     ref.Name,
			Quantity: ref.Quantity,
		})
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
