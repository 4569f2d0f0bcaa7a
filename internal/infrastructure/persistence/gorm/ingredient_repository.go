package gorm

import (
	"context"
	"errors"

	"github.com/cookease/api/internal/domain/ingredient"
	"github.com/cookease/api/internal/ports/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientRepository implements the ingredient repository port on GORM.
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository.
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Create inserts or replaces a catalog entry. Ingredient ids are assigned by
// the catalog importer, so a repeat id is an update, not an error.
func (r *IngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	if err := ing.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(ingredientToModel(ing)).Error
}

// FindByID loads a single ingredient.
func (r *IngredientRepository) FindByID(ctx context.Context, id string) (*ingredient.Ingredient, error) {
	var model IngredientModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ingredient.ErrIngredientNotFound
		}
		return nil, err
	}
	return modelToIngredient(&model), nil
}

// FindAll returns the sellable catalog ordered by name.
func (r *IngredientRepository) FindAll(ctx context.Context) ([]*ingredient.Ingredient, error) {
	var models []IngredientModel
	err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*ingredient.Ingredient, 0, len(models))
	for i := range models {
		out = append(out, modelToIngredient(&models[i]))
	}
	return out, nil
}

var _ outbound.IngredientRepository = (*IngredientRepository)(nil)
