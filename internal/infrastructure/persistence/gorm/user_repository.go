package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/cookease/api/internal/domain/user"
	"github.com/cookease/api/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository implements the user repository port on GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Unique-index violations are translated to the
// domain's taken errors.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := userToModel(u)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			if strings.Contains(err.Error(), "username") {
				return user.ErrUsernameTaken
			}
			return user.ErrEmailTaken
		}
		return err
	}
	return nil
}

// Update persists the user's scalar fields. Favorites and cart lines are
// written through their dedicated operations, never here.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	result := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", u.ID()).
		Updates(map[string]interface{}{
			"username":      u.Username(),
			"email":         u.Email(),
			"password_hash": u.PasswordHash(),
			"google_id":     u.GoogleID(),
			"updated_at":    u.UpdatedAt(),
		})
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			if strings.Contains(result.Error.Error(), "username") {
				return user.ErrUsernameTaken
			}
			return user.ErrEmailTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// FindByID loads a user with favorites and cart lines.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail loads a user by lowercased email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindByUsername loads a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).
		Preload("Favorites", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("CartLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at ASC")
		}).
		First(&model, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return modelToUser(&model), nil
}

// UsernameTakenByOther reports whether a different user holds the username.
func (r *UserRepository) UsernameTakenByOther(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("username = ? AND id <> ?", username, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Transaction runs fn against a repository bound to one database
// transaction.
func (r *UserRepository) Transaction(ctx context.Context, fn func(repo outbound.UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}

// AddFavorite inserts the favorite row; the composite primary key makes a
// repeat insert a no-op, so concurrent toggles cannot create duplicates.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&FavoriteModel{UserID: userID, RecipeID: recipeID}).Error
}

// RemoveFavorite deletes the favorite row. Removing an absent favorite is
// not an error.
func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&FavoriteModel{}).Error
}

// Favorites returns the user's favorite recipe ids in insertion order.
func (r *UserRepository) Favorites(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if err := r.userExists(ctx, userID); err != nil {
		return nil, err
	}
	var rows []FavoriteModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RecipeID)
	}
	return ids, nil
}

// UpsertCartLine inserts the line or, when one exists for the same
// ingredient, increments its quantity in place. The stored snapshot columns
// are left untouched on conflict.
func (r *UserRepository) UpsertCartLine(ctx context.Context, userID uuid.UUID, line user.CartLine) (user.CartLine, error) {
	if err := r.userExists(ctx, userID); err != nil {
		return user.CartLine{}, err
	}
	if line.Quantity < 1 {
		return user.CartLine{}, user.ErrInvalidQuantity
	}

	model := cartLineToModel(userID, line)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "ingredient_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_lines.quantity + ?", line.Quantity),
			}),
		}).
		Create(model).Error
	if err != nil {
		return user.CartLine{}, err
	}
	return r.cartLine(ctx, userID, line.IngredientID)
}

// SetCartLineQuantity sets the absolute quantity of an existing line.
func (r *UserRepository) SetCartLineQuantity(ctx context.Context, userID uuid.UUID, ingredientID string, quantity int) (user.CartLine, error) {
	if err := r.userExists(ctx, userID); err != nil {
		return user.CartLine{}, err
	}
	if quantity < 1 {
		return user.CartLine{}, user.ErrInvalidQuantity
	}

	result := r.db.WithContext(ctx).Model(&CartLineModel{}).
		Where("user_id = ? AND ingredient_id = ?", userID, ingredientID).
		Update("quantity", quantity)
	if result.Error != nil {
		return user.CartLine{}, result.Error
	}
	if result.RowsAffected == 0 {
		return user.CartLine{}, user.ErrItemNotInCart
	}
	return r.cartLine(ctx, userID, ingredientID)
}

// DeleteCartLine removes the line, failing when it is not in the cart.
func (r *UserRepository) DeleteCartLine(ctx context.Context, userID uuid.UUID, ingredientID string) error {
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND ingredient_id = ?", userID, ingredientID).
		Delete(&CartLineModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrItemNotInCart
	}
	return nil
}

// ClearCart deletes all of the user's cart lines.
func (r *UserRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := r.userExists(ctx, userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&CartLineModel{}).Error
}

// CartLines returns the user's cart in add order.
func (r *UserRepository) CartLines(ctx context.Context, userID uuid.UUID) ([]user.CartLine, error) {
	if err := r.userExists(ctx, userID); err != nil {
		return nil, err
	}
	var rows []CartLineModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	lines := make([]user.CartLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, cartLineFromModel(&row))
	}
	return lines, nil
}

func (r *UserRepository) cartLine(ctx context.Context, userID uuid.UUID, ingredientID string) (user.CartLine, error) {
	var model CartLineModel
	err := r.db.WithContext(ctx).
		First(&model, "user_id = ? AND ingredient_id = ?", userID, ingredientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.CartLine{}, user.ErrItemNotInCart
		}
		return user.CartLine{}, err
	}
	return cartLineFromModel(&model), nil
}

func (r *UserRepository) userExists(ctx context.Context, userID uuid.UUID) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

var _ outbound.UserRepository = (*UserRepository)(nil)
