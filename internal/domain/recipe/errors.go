package recipe

import "errors"

// Domain errors for recipe operations

var (
	ErrTitleRequired          = errors.New("recipe title is required")
	ErrDescriptionRequired    = errors.New("recipe description is required")
	ErrCountryRequired        = errors.New("recipe country is required")
	ErrMainIngredientRequired = errors.New("recipe main ingredient is required")
	ErrInvalidRating          = errors.New("rating must be between 0 and 5")

	ErrRecipeNotFound = errors.New("recipe not found")
)
