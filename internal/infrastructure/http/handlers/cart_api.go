package handlers

import (
	"net/http"

	appcart "github.com/cookease/api/internal/application/cart"
	"github.com/cookease/api/internal/infrastructure/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartHandlers handles the shopping cart endpoints. Every route requires an
// authenticated user.
type CartHandlers struct {
	cartService *appcart.Service
	logger      *zap.Logger
}

// NewCartHandlers creates the cart handlers.
func NewCartHandlers(cartService *appcart.Service, logger *zap.Logger) *CartHandlers {
	return &CartHandlers{
		cartService: cartService,
		logger:      logger.Named("cart-handlers"),
	}
}

// Get handles GET /cart.
func (h *CartHandlers) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	cart, err := h.cartService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, cart)
}

// Add handles POST /cart/add. Adding an ingredient already in the cart
// increments its quantity.
func (h *CartHandlers) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var cmd appcart.AddCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}
	cart, err := h.cartService.Add(r.Context(), userID, cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Item added to cart", cart)
}

// Update handles PUT /cart/{ingredientId}, setting an absolute quantity.
func (h *CartHandlers) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var cmd appcart.UpdateCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}
	cart, err := h.cartService.Update(r.Context(), userID, chi.URLParam(r, "ingredientId"), cmd)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart updated", cart)
}

// Remove handles DELETE /cart/{ingredientId}.
func (h *CartHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	cart, err := h.cartService.Remove(r.Context(), userID, chi.URLParam(r, "ingredientId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Item removed from cart", cart)
}

// Clear handles DELETE /cart.
func (h *CartHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	cart, err := h.cartService.Clear(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared", cart)
}

func (h *CartHandlers) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "Authentication required", "NO_TOKEN")
		return uuid.Nil, false
	}
	return userID, true
}
