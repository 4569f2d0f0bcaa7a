package handlers

import (
	"net/http"

	appingredient "github.com/cookease/api/internal/application/ingredient"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IngredientHandlers handles ingredient catalog endpoints.
type IngredientHandlers struct {
	ingredientService *appingredient.Service
	logger            *zap.Logger
}

// NewIngredientHandlers creates the ingredient handlers.
func NewIngredientHandlers(ingredientService *appingredient.Service, logger *zap.Logger) *IngredientHandlers {
	return &IngredientHandlers{
		ingredientService: ingredientService,
		logger:            logger.Named("ingredient-handlers"),
	}
}

// List handles GET /ingredients.
func (h *IngredientHandlers) List(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.ingredientService.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, ingredients)
}

// Get handles GET /ingredients/{id}.
func (h *IngredientHandlers) Get(w http.ResponseWriter, r *http.Request) {
	dto, err := h.ingredientService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto)
}
