// Package cart implements the shopping cart use cases. Cart lines carry a
// price/name snapshot taken at add time and are keyed by ingredient id, with
// at most one line per ingredient.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/cookease/api/internal/domain/user"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements cart aggregation use cases.
type Service struct {
	users       outbound.UserRepository
	ingredients outbound.IngredientRepository
	logger      *zap.Logger
}

// NewService creates a new cart service.
func NewService(
	users outbound.UserRepository,
	ingredients outbound.IngredientRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:       users,
		ingredients: ingredients,
		logger:      logger.Named("cart-service"),
	}
}

// AddCommand adds a quantity of an ingredient to the cart. Unit is supplied
// by the client and becomes part of the line's snapshot.
type AddCommand struct {
	IngredientID string `json:"ingredientId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	Unit         string `json:"unit" validate:"required"`
}

// UpdateCommand sets the absolute quantity of an existing cart line.
type UpdateCommand struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// LineDTO is one cart line as returned to clients. Name, price, unit, and
// image are the snapshot taken when the line was first added.
type LineDTO struct {
	IngredientID string    `json:"ingredientId"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Unit         string    `json:"unit"`
	Quantity     int       `json:"quantity"`
	Image        string    `json:"image"`
	AddedAt      time.Time `json:"addedAt"`
}

// CartDTO is the cart with derived totals.
type CartDTO struct {
	Items      []LineDTO `json:"items"`
	TotalItems int       `json:"totalItems"`
	TotalPrice float64   `json:"totalPrice"`
}

// Get returns the user's cart with totals.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	lines, err := s.users.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCartDTO(lines), nil
}

// Add puts a quantity of an ingredient into the cart. A line for the same
// ingredient already in the cart has its quantity incremented; the stored
// price/name snapshot is kept even when the catalog entry has changed since.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, cmd AddCommand) (*CartDTO, error) {
	ing, err := s.ingredients.FindByID(ctx, cmd.IngredientID)
	if err != nil {
		return nil, err
	}

	line := user.CartLine{
		IngredientID: ing.ID,
		Name:         ing.Name,
		Price:        ing.Price,
		Unit:         cmd.Unit,
		Quantity:     cmd.Quantity,
		Image:        ing.Image,
		AddedAt:      time.Now(),
	}
	if _, err := s.users.UpsertCartLine(ctx, userID, line); err != nil {
		return nil, fmt.Errorf("add cart line: %w", err)
	}

	s.logger.Debug("cart line upserted",
		zap.String("user_id", userID.String()),
		zap.String("ingredient_id", ing.ID),
		zap.Int("quantity", cmd.Quantity))

	return s.Get(ctx, userID)
}

// Update sets the absolute quantity of an existing cart line.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, ingredientID string, cmd UpdateCommand) (*CartDTO, error) {
	if cmd.Quantity < 1 {
		return nil, user.ErrInvalidQuantity
	}
	if _, err := s.users.SetCartLineQuantity(ctx, userID, ingredientID, cmd.Quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Remove deletes a cart line.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, ingredientID string) (*CartDTO, error) {
	if err := s.users.DeleteCartLine(ctx, userID, ingredientID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if err := s.users.ClearCart(ctx, userID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func toCartDTO(lines []user.CartLine) *CartDTO {
	items := make([]LineDTO, 0, len(lines))
	totalItems := 0
	totalPrice := 0.0
	for _, line := range lines {
		items = append(items, LineDTO{
			IngredientID: line.IngredientID,
			Name:         line.Name,
			Price:        line.Price,
			Unit:         line.Unit,
			Quantity:     line.Quantity,
			Image:        line.Image,
			AddedAt:      line.AddedAt,
		})
		totalItems += line.Quantity
		totalPrice += line.Price * float64(line.Quantity)
	}
	return &CartDTO{
		Items:      items,
		TotalItems: totalItems,
		TotalPrice: user.RoundPrice(totalPrice),
	}
}
