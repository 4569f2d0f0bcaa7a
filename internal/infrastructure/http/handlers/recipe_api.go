package handlers

import (
	"net/http"
	"strconv"

	apprecipe "github.com/cookease/api/internal/application/recipe"
	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/infrastructure/http/middleware"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecipeHandlers handles recipe catalog and favorites endpoints.
type RecipeHandlers struct {
	recipeService *apprecipe.Service
	logger        *zap.Logger
}

// NewRecipeHandlers creates the recipe handlers.
func NewRecipeHandlers(recipeService *apprecipe.Service, logger *zap.Logger) *RecipeHandlers {
	return &RecipeHandlers{
		recipeService: recipeService,
		logger:        logger.Named("recipe-handlers"),
	}
}

// List handles GET /recipes.
func (h *RecipeHandlers) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, recipes)
}

// Get handles GET /recipes/{id}.
func (h *RecipeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}
	dto, err := h.recipeService.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, dto)
}

// Create handles POST /recipes.
func (h *RecipeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var cmd apprecipe.CreateCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}
	dto, err := h.recipeService.Create(r.Context(), cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Recipe created", dto)
}

// Update handles PUT /recipes/{id}.
func (h *RecipeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}
	var cmd apprecipe.CreateCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}
	dto, err := h.recipeService.Update(r.Context(), id, cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Recipe updated", dto)
}

// Delete handles DELETE /recipes/{id}.
func (h *RecipeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}
	if err := h.recipeService.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Recipe deleted", nil)
}

// Filter handles GET /recipes/filter. Repeated query parameters OR within a
// rail: ?country=Japan&country=Mexico.
func (h *RecipeHandlers) Filter(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := outbound.RecipeFilter{
		Countries:        query["country"],
		MainIngredients:  query["mainIngredient"],
		ExcludeAllergens: query["excludeAllergen"],
	}
	recipes, err := h.recipeService.Filter(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, recipes)
}

// Search handles GET /recipes/search?q=&page=&limit=.
func (h *RecipeHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.recipeService.Search(r.Context(), query.Get("q"), page, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// FilterOptions handles GET /recipes/filter-options.
func (h *RecipeHandlers) FilterOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.recipeService.FilterOptions(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, options)
}

// Favorites handles GET /recipes/favorites.
func (h *RecipeHandlers) Favorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "Authentication required", "NO_TOKEN")
		return
	}
	favorites, err := h.recipeService.FavoriteRecipes(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, favorites)
}

// ToggleFavorite handles PATCH /recipes/{id}/favorite.
func (h *RecipeHandlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "Authentication required", "NO_TOKEN")
		return
	}
	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	result, err := h.recipeService.ToggleFavorite(r.Context(), userID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (h *RecipeHandlers) recipeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, recipe.ErrRecipeNotFound)
		return uuid.Nil, false
	}
	return id, true
}
