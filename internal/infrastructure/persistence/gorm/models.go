// Package gorm provides the GORM models and repository implementations
// backing the outbound persistence ports.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserModel is the users table. Favorites and cart lines live in their own
// tables so they can be written atomically per row.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username     string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255)"`
	GoogleID     string    `gorm:"type:varchar(255);index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Favorites []FavoriteModel `gorm:"foreignKey:UserID"`
	CartLines []CartLineModel `gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }

// FavoriteModel is the user-recipe favorites join table. The composite
// primary key makes duplicate insertion impossible at the storage layer.
type FavoriteModel struct {
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID  uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time
}

func (FavoriteModel) TableName() string { return "user_favorites" }

// CartLineModel is one cart line. The unique (user_id, ingredient_id) index
// backs the one-line-per-ingredient invariant; Name, Price, Unit, and Image
// are the snapshot taken at add time.
type CartLineModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	UserID       uuid.UUID `gorm:"type:char(36);uniqueIndex:idx_cart_user_ingredient;not null"`
	IngredientID string    `gorm:"type:varchar(64);uniqueIndex:idx_cart_user_ingredient;not null"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Price        float64   `gorm:"not null"`
	Unit         string    `gorm:"type:varchar(50)"`
	Quantity     int       `gorm:"not null"`
	Image        string    `gorm:"type:text"`
	AddedAt      time.Time
}

func (CartLineModel) TableName() string { return "cart_lines" }

// RecipeModel is the recipes table.
type RecipeModel struct {
	ID             uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Title          string      `gorm:"type:varchar(255);not null;index"`
	Image          string      `gorm:"type:text"`
	Description    string      `gorm:"type:text;not null"`
	Country        string      `gorm:"type:varchar(100);not null;index"`
	MainIngredient string      `gorm:"type:varchar(100);not null;index"`
	Allergens      StringSlice `gorm:"type:json"`
	CookTime       string      `gorm:"type:varchar(50)"`
	Rating         float64     `gorm:"default:0;index"`
	Ingredients    JSONField   `gorm:"type:json"`
	Instructions   string      `gorm:"type:text"`
	Nutrition      StringMap   `gorm:"type:json"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (RecipeModel) TableName() string { return "recipes" }

// IngredientModel is the sellable ingredient catalog. Ids are
// application-assigned strings, matching the catalog's external references.
type IngredientModel struct {
	ID             string    `gorm:"type:varchar(64);primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null;index"`
	Price          float64   `gorm:"not null"`
	Unit           string    `gorm:"type:varchar(50)"`
	Image          string    `gorm:"type:text"`
	Sell           bool      `gorm:"default:true"`
	StoreURLs      StringMap `gorm:"type:json"`
	Description    string    `gorm:"type:text"`
	Nutrition      StringMap `gorm:"type:json"`
	AdditionalInfo string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (IngredientModel) TableName() string { return "ingredients" }

// StringSlice stores a []string as a JSON column.
type StringSlice []string

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// StringMap stores a map[string]string as a JSON column.
type StringMap map[string]string

// Scan implements the sql.Scanner interface.
func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = StringMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into StringMap", value)
	}
}

// Value implements the driver.Valuer interface.
func (m StringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// JSONField stores arbitrary JSON documents, used for recipe ingredient
// lists.
type JSONField []map[string]interface{}

// Scan implements the sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = JSONField{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "[]", nil
	}
	return json.Marshal(j)
}
