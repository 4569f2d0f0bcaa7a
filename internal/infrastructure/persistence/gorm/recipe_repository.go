package gorm

import (
	"context"
	"errors"

	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeRepository implements the recipe repository port on GORM.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create inserts a new recipe.
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	return r.db.WithContext(ctx).Create(recipeToModel(rec)).Error
}

// Update replaces a recipe's row.
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id = ?", rec.ID()).
		Select("*").Omit("id", "created_at").
		Updates(recipeToModel(rec))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// Delete removes a recipe. Favorite rows referencing it are left in place
// and skipped at read time.
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&RecipeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// FindByID loads a single recipe.
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, err
	}
	return modelToRecipe(&model), nil
}

// FindAll returns the whole catalog, newest first.
func (r *RecipeRepository) FindAll(ctx context.Context) ([]*recipe.Recipe, error) {
	var models []RecipeModel
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	return modelsToRecipes(models), nil
}

// FindByIDs returns the recipes that exist among ids. Unknown ids are
// absent from the result; callers needing the request order re-sort.
func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []RecipeModel
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error
	if err != nil {
		return nil, err
	}
	return modelsToRecipes(models), nil
}

// Filter narrows the catalog by country and main ingredient, then drops
// recipes listing any excluded allergen. Allergens live in a JSON column, so
// the allergen cut happens in memory after the indexed rails.
func (r *RecipeRepository) Filter(ctx context.Context, filter outbound.RecipeFilter) ([]*recipe.Recipe, error) {
	query := r.db.WithContext(ctx).Model(&RecipeModel{})
	if len(filter.Countries) > 0 {
		query = query.Where("country IN ?", filter.Countries)
	}
	if len(filter.MainIngredients) > 0 {
		query = query.Where("main_ingredient IN ?", filter.MainIngredients)
	}

	var models []RecipeModel
	if err := query.Order("rating DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*recipe.Recipe, 0, len(models))
	for i := range models {
		rec := modelToRecipe(&models[i])
		if len(filter.ExcludeAllergens) > 0 && rec.ContainsAnyAllergen(filter.ExcludeAllergens) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Search matches the query against title and description,
// case-insensitively, returning one page plus the total match count.
func (r *RecipeRepository) Search(ctx context.Context, query string, offset, limit int) ([]*recipe.Recipe, int64, error) {
	pattern := "%" + query + "%"
	matches := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&RecipeModel{}).
			Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := matches().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []RecipeModel
	err := matches().Order("rating DESC").Offset(offset).Limit(limit).Find(&models).Error
	if err != nil {
		return nil, 0, err
	}
	return modelsToRecipes(models), total, nil
}

// FilterOptions aggregates the distinct countries, main ingredients, and
// allergens in the catalog.
func (r *RecipeRepository) FilterOptions(ctx context.Context) (*outbound.FilterOptions, error) {
	var countries []string
	err := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Distinct("country").Order("country ASC").Pluck("country", &countries).Error
	if err != nil {
		return nil, err
	}

	var mains []string
	err = r.db.WithContext(ctx).Model(&RecipeModel{}).
		Distinct("main_ingredient").Order("main_ingredient ASC").
		Pluck("main_ingredient", &mains).Error
	if err != nil {
		return nil, err
	}

	// Allergens are JSON arrays; distinct them in memory.
	var allergenRows []StringSlice
	err = r.db.WithContext(ctx).Model(&RecipeModel{}).
		Pluck("allergens", &allergenRows).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	allergens := make([]string, 0)
	for _, row := range allergenRows {
		for _, a := range row {
			if !seen[a] {
				seen[a] = true
				allergens = append(allergens, a)
			}
		}
	}

	return &outbound.FilterOptions{
		Countries:       countries,
		MainIngredients: mains,
		Allergens:       allergens,
	}, nil
}

func modelsToRecipes(models []RecipeModel) []*recipe.Recipe {
	out := make([]*recipe.Recipe, 0, len(models))
	for i := range models {
		out = append(out, modelToRecipe(&models[i]))
	}
	return out
}

var _ outbound.RecipeRepository = (*RecipeRepository)(nil)
