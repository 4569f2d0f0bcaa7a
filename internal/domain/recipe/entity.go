// Package recipe defines the recipe domain entity
package recipe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ingredient is one line of a recipe's ingredient list. RefID links to the
// ingredient catalog; Quantity is free text ("2 cups", "a pinch").
type Ingredient struct {
	RefID    string
	Name     string
	Quantity string
}

// Nutrition holds display-oriented nutrition values, keyed the way the
// catalog data ships them ("Calories", "Protein", ...).
type Nutrition map[string]string

// Recipe represents a dish in the catalog.
type Recipe struct {
	id             uuid.UUID
	title          string
	image          string
	description    string
	country        string
	mainIngredient string
	allergens      []string
	cookTime       string
	rating         float64
	ingredients    []Ingredient
	instructions   string
	nutrition      Nutrition
	createdAt      time.Time
	updatedAt      time.Time
}

// NewRecipe creates a recipe with validation.
func NewRecipe(title, image, description, country, mainIngredient, cookTime, instructions string, rating float64) (*Recipe, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrDescriptionRequired
	}
	if strings.TrimSpace(country) == "" {
		return nil, ErrCountryRequired
	}
	if strings.TrimSpace(mainIngredient) == "" {
		return nil, ErrMainIngredientRequired
	}
	if rating < 0 || rating > 5 {
		return nil, ErrInvalidRating
	}

	now := time.Now()
	return &Recipe{
		id:             uuid.New(),
		title:          strings.TrimSpace(title),
		image:          image,
		description:    description,
		country:        strings.TrimSpace(country),
		mainIngredient: strings.TrimSpace(mainIngredient),
		cookTime:       cookTime,
		rating:         rating,
		instructions:   instructions,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Rehydrate reconstructs a recipe from persisted state.
func Rehydrate(
	id uuid.UUID,
	title, image, description, country, mainIngredient, cookTime, instructions string,
	rating float64,
	allergens []string,
	ingredients []Ingredient,
	nutrition Nutrition,
	createdAt, updatedAt time.Time,
) *Recipe {
	return &Recipe{
		id:             id,
		title:          title,
		image:          image,
		description:    description,
		country:        country,
		mainIngredient: mainIngredient,
		allergens:      allergens,
		cookTime:       cookTime,
		rating:         rating,
		ingredients:    ingredients,
		instructions:   instructions,
		nutrition:      nutrition,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (r *Recipe) ID() uuid.UUID             { return r.id }
func (r *Recipe) Title() string             { return r.title }
func (r *Recipe) Image() string             { return r.image }
func (r *Recipe) Description() string       { return r.description }
func (r *Recipe) Country() string           { return r.country }
func (r *Recipe) MainIngredient() string    { return r.mainIngredient }
func (r *Recipe) Allergens() []string       { return r.allergens }
func (r *Recipe) CookTime() string          { return r.cookTime }
func (r *Recipe) Rating() float64           { return r.rating }
func (r *Recipe) Ingredients() []Ingredient { return r.ingredients }
func (r *Recipe) Instructions() string      { return r.instructions }
func (r *Recipe) Nutrition() Nutrition      { return r.nutrition }
func (r *Recipe) CreatedAt() time.Time      { return r.createdAt }
func (r *Recipe) UpdatedAt() time.Time      { return r.updatedAt }

// SetAllergens replaces the allergen set, dropping duplicates.
func (r *Recipe) SetAllergens(allergens []string) {
	seen := make(map[string]bool, len(allergens))
	out := make([]string, 0, len(allergens))
	for _, a := range allergens {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	r.allergens = out
	r.updatedAt = time.Now()
}

// SetIngredients replaces the ingredient list.
func (r *Recipe) SetIngredients(ingredients []Ingredient) {
	r.ingredients = ingredients
	r.updatedAt = time.Now()
}

// SetNutrition replaces the nutrition table.
func (r *Recipe) SetNutrition(n Nutrition) {
	r.nutrition = n
	r.updatedAt = time.Now()
}

// ContainsAnyAllergen reports whether the recipe lists any of the given
// allergens. Used by catalog filtering to exclude recipes.
func (r *Recipe) ContainsAnyAllergen(allergens []string) bool {
	for _, excluded := range allergens {
		for _, a := range r.allergens {
			if strings.EqualFold(a, excluded) {
				return true
			}
		}
	}
	return false
}
