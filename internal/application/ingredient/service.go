// Package ingredient exposes the ingredient catalog.
package ingredient

import (
	"context"

	"github.com/cookease/api/internal/domain/ingredient"
	"github.com/cookease/api/internal/ports/outbound"
	"go.uber.org/zap"
)

// IngredientDTO is the catalog ingredient shape returned to clients.
type IngredientDTO struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Price          float64           `json:"price"`
	Unit           string            `json:"unit"`
	Image          string            `json:"image,omitempty"`
	Sell           bool              `json:"sell"`
	StoreURLs      map[string]string `json:"storeUrls,omitempty"`
	Description    string            `json:"description,omitempty"`
	Nutrition      map[string]string `json:"nutrition,omitempty"`
	AdditionalInfo string            `json:"additionalInfo,omitempty"`
}

// Service serves ingredient catalog reads.
type Service struct {
	ingredients outbound.IngredientRepository
	logger      *zap.Logger
}

// NewService creates the ingredient service.
func NewService(ingredients outbound.IngredientRepository, logger *zap.Logger) *Service {
	return &Service{
		ingredients: ingredients,
		logger:      logger.Named("ingredient-service"),
	}
}

// List returns every catalog ingredient ordered by name.
func (s *Service) List(ctx context.Context) ([]IngredientDTO, error) {
	ingredients, err := s.ingredients.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]IngredientDTO, 0, len(ingredients))
	for _, ing := range ingredients {
		dtos = append(dtos, toDTO(ing))
	}
	return dtos, nil
}

// Get returns a single ingredient by its catalog id.
func (s *Service) Get(ctx context.Context, id string) (IngredientDTO, error) {
	ing, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		return IngredientDTO{}, err
	}
	return toDTO(ing), nil
}

// Save validates and upserts a catalog ingredient. Repeated ids overwrite
// the stored entry.
func (s *Service) Save(ctx context.Context, ing *ingredient.Ingredient) error {
	if err := ing.Validate(); err != nil {
		return err
	}
	if err := s.ingredients.Create(ctx, ing); err != nil {
		return err
	}
	s.logger.Debug("ingredient saved", zap.String("id", ing.ID))
	return nil
}

func toDTO(ing *ingredient.Ingredient) IngredientDTO {
	return IngredientDTO{
		ID:             ing.ID,
		Name:           ing.Name,
		Price:          ing.Price,
		Unit:           ing.Unit,
		Image:          ing.Image,
		Sell:           ing.Sell,
		StoreURLs:      ing.StoreURLs,
		Description:    ing.Description,
		Nutrition:      ing.Nutrition,
		AdditionalInfo: ing.AdditionalInfo,
	}
}
