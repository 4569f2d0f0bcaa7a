// Package ingredient defines the purchasable ingredient entity
package ingredient

import (
	"errors"
	"strings"
)

var (
	ErrIDRequired   = errors.New("ingredient id is required")
	ErrNameRequired = errors.New("ingredient name is required")
	ErrInvalidPrice = errors.New("ingredient price must not be negative")

	ErrIngredientNotFound = errors.New("ingredient not found")
)

// Ingredient is a purchasable catalog item. ID is the catalog's own string
// identifier, not a database key; it is what cart lines reference. Price and
// name here are the source of truth that cart lines snapshot at add-time.
type Ingredient struct {
	ID             string
	Name           string
	Price          float64
	Unit           string
	Image          string
	Sell           bool
	StoreURLs      map[string]string
	Description    string
	Nutrition      map[string]string
	AdditionalInfo string
}

// Validate checks the invariants a catalog item must hold.
func (i *Ingredient) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrIDRequired
	}
	if strings.TrimSpace(i.Name) == "" {
		return ErrNameRequired
	}
	if i.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
