package handlers

import (
	"net/http"

	"github.com/cookease/api/internal/application/recommend"
	"github.com/cookease/api/internal/infrastructure/http/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AIHandlers handles the recommendation endpoint. Authentication is
// optional: signed-in users get favorites-based picks, everyone else gets
// the popular-recipes variant.
type AIHandlers struct {
	recommendService *recommend.Service
	logger           *zap.Logger
}

// NewAIHandlers creates the AI handlers.
func NewAIHandlers(recommendService *recommend.Service, logger *zap.Logger) *AIHandlers {
	return &AIHandlers{
		recommendService: recommendService,
		logger:           logger.Named("ai-handlers"),
	}
}

// Recommendations handles GET /ai/recommendations.
func (h *AIHandlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		userID = &id
	}

	result, err := h.recommendService.Recommend(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
