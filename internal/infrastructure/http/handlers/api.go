// Package handlers provides the REST API handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cookease/api/internal/application/recommend"
	"github.com/cookease/api/internal/domain/ingredient"
	"github.com/cookease/api/internal/domain/recipe"
	"github.com/cookease/api/internal/domain/user"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// APIResponse is the JSON envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, APIResponse{Success: true, Message: message, Data: data})
}

func writeErrorCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, APIResponse{Success: false, Message: message, Code: code})
}

// decodeAndValidate reads the request body into dst and runs struct
// validation. A false return means the error response has been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeErrorCode(w, http.StatusBadRequest, validationMessage(err), "VALIDATION_ERROR")
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "email":
			return fe.Field() + " must be a valid email address"
		case "min":
			return fe.Field() + " is too short or too small"
		case "max":
			return fe.Field() + " is too long or too large"
		}
		return fe.Field() + " is invalid"
	}
	return "Validation failed"
}

// writeError translates domain errors to the envelope's status and code.
// Anything unrecognized is reported as a generic server error without
// leaking internals.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, user.ErrUsernameTaken):
		writeErrorCode(w, http.StatusConflict, "Username is already taken", "USERNAME_EXISTS")
	case errors.Is(err, user.ErrEmailTaken):
		writeErrorCode(w, http.StatusConflict, "Email is already registered", "EMAIL_EXISTS")
	case errors.Is(err, user.ErrInvalidCredentials):
		writeErrorCode(w, http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
	case errors.Is(err, user.ErrNoLocalAuth):
		writeErrorCode(w, http.StatusUnauthorized,
			"This account uses Google sign-in; no password is set", "NO_LOCAL_AUTH")
	case errors.Is(err, user.ErrUserNotFound):
		writeErrorCode(w, http.StatusNotFound, "User not found", "USER_NOT_FOUND")
	case errors.Is(err, recipe.ErrRecipeNotFound):
		writeErrorCode(w, http.StatusNotFound, "Recipe not found", "RECIPE_NOT_FOUND")
	case errors.Is(err, ingredient.ErrIngredientNotFound):
		writeErrorCode(w, http.StatusNotFound, "Ingredient not found", "INGREDIENT_NOT_FOUND")
	case errors.Is(err, user.ErrItemNotInCart):
		writeErrorCode(w, http.StatusNotFound, "Item is not in the cart", "ITEM_NOT_IN_CART")
	case errors.Is(err, user.ErrInvalidQuantity):
		writeErrorCode(w, http.StatusBadRequest, "Quantity must be at least 1", "VALIDATION_ERROR")
	case errors.Is(err, recommend.ErrRecommendationUnavailable):
		writeErrorCode(w, http.StatusInternalServerError,
			"Recommendations are temporarily unavailable", "AI_UNAVAILABLE")
	case errors.Is(err, user.ErrUsernameTooShort),
		errors.Is(err, user.ErrUsernameTooLong),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrPasswordTooShort),
		errors.Is(err, user.ErrPasswordTooLong),
		errors.Is(err, recipe.ErrTitleRequired),
		errors.Is(err, recipe.ErrDescriptionRequired),
		errors.Is(err, recipe.ErrCountryRequired),
		errors.Is(err, recipe.ErrMainIngredientRequired),
		errors.Is(err, recipe.ErrInvalidRating):
		writeErrorCode(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeErrorCode(w, http.StatusInternalServerError, "Internal server error", "SERVER_ERROR")
	}
}
