// Package user defines the user domain entity
package user

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthMethod identifies a way a user can authenticate.
type AuthMethod string

const (
	AuthMethodLocal  AuthMethod = "local"
	AuthMethodGoogle AuthMethod = "google"
)

// User represents an account in the system. An account may carry local
// credentials, a linked Google identity, or both; authMethods always
// reflects exactly the capabilities the other fields support.
type User struct {
	id           uuid.UUID
	username     string
	email        string
	passwordHash string
	googleID     string
	authMethods  []AuthMethod
	favorites    []uuid.UUID
	cart         []CartLine
	createdAt    time.Time
	updatedAt    time.Time
}

// CartLine is one ingredient entry in a user's shopping cart. Name, unit,
// price and image are snapshots taken when the line was first added; they
// are never refreshed from the ingredient catalog.
type CartLine struct {
	IngredientID string
	Name         string
	Unit         string
	Price        float64
	Quantity     int
	Image        string
	AddedAt      time.Time
}

// NewUser creates a user with local credentials.
func NewUser(username, email, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &User{
		id:           uuid.New(),
		username:     strings.TrimSpace(username),
		email:        normalizeEmail(email),
		passwordHash: hash,
		authMethods:  []AuthMethod{AuthMethodLocal},
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// NewGoogleUser creates a user from a Google OAuth identity. The account has
// no password; displayName falls back to the local part of the email.
func NewGoogleUser(googleID, email, displayName string) (*User, error) {
	if googleID == "" {
		return nil, ErrGoogleIDMismatch
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(displayName)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	now := time.Now()
	return &User{
		id:          uuid.New(),
		username:    username,
		email:       normalizeEmail(email),
		googleID:    googleID,
		authMethods: []AuthMethod{AuthMethodGoogle},
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Rehydrate reconstructs a user from persisted state. The authMethods
// consistency invariant is re-derived rather than trusted, so a record
// written before the invariant existed still comes back consistent.
func Rehydrate(
	id uuid.UUID,
	username, email, passwordHash, googleID string,
	methods []AuthMethod,
	favorites []uuid.UUID,
	cart []CartLine,
	createdAt, updatedAt time.Time,
) *User {
	u := &User{
		id:           id,
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		googleID:     googleID,
		authMethods:  methods,
		favorites:    favorites,
		cart:         cart,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
	if passwordHash != "" {
		u.addAuthMethod(AuthMethodLocal)
	}
	if googleID != "" {
		u.addAuthMethod(AuthMethodGoogle)
	}
	return u
}

func (u *User) ID() uuid.UUID             { return u.id }
func (u *User) Username() string          { return u.username }
func (u *User) Email() string             { return u.email }
func (u *User) PasswordHash() string      { return u.passwordHash }
func (u *User) GoogleID() string          { return u.googleID }
func (u *User) AuthMethods() []AuthMethod { return u.authMethods }
func (u *User) CreatedAt() time.Time      { return u.createdAt }
func (u *User) UpdatedAt() time.Time      { return u.updatedAt }

// HasLocalAuth reports whether password login is possible for this account.
func (u *User) HasLocalAuth() bool {
	return u.passwordHash != ""
}

// SupportsAuthMethod reports whether the account supports the given method.
func (u *User) SupportsAuthMethod(method AuthMethod) bool {
	for _, m := range u.authMethods {
		if m == method {
			return true
		}
	}
	return false
}

// CheckPassword verifies the provided password against the stored hash.
// Accounts without a local password always fail.
func (u *User) CheckPassword(password string) error {
	if u.passwordHash == "" {
		return ErrNoLocalAuth
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// SetPassword sets or replaces the local password and records the local
// auth capability.
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	u.addAuthMethod(AuthMethodLocal)
	u.touch()
	return nil
}

// Rename changes the username. Uniqueness against other users is the
// caller's responsibility.
func (u *User) Rename(username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	u.username = strings.TrimSpace(username)
	u.touch()
	return nil
}

// LinkGoogleAccount attaches a Google identity to the account. Linking is
// idempotent for the same external id; a different id is rejected without
// mutating anything.
func (u *User) LinkGoogleAccount(googleID string) error {
	if u.googleID != "" {
		if u.googleID == googleID {
			return nil
		}
		return ErrGoogleIDMismatch
	}
	u.googleID = googleID
	u.addAuthMethod(AuthMethodGoogle)
	u.touch()
	return nil
}

// FavoriteRecipeIDs returns the favorite set in insertion order.
func (u *User) FavoriteRecipeIDs() []uuid.UUID {
	return u.favorites
}

// IsFavorite reports membership of recipeID in the favorite set.
func (u *User) IsFavorite(recipeID uuid.UUID) bool {
	for _, id := range u.favorites {
		if id == recipeID {
			return true
		}
	}
	return false
}

// ToggleFavorite flips membership of recipeID in the favorite set and
// returns the new membership state. The set never holds duplicates.
func (u *User) ToggleFavorite(recipeID uuid.UUID) bool {
	for i, id := range u.favorites {
		if id == recipeID {
			u.favorites = append(u.favorites[:i], u.favorites[i+1:]...)
			u.touch()
			return false
		}
	}
	u.favorites = append(u.favorites, recipeID)
	u.touch()
	return true
}

// Cart returns the cart lines in insertion order.
func (u *User) Cart() []CartLine {
	return u.cart
}

// AddCartLine adds quantity of an ingredient to the cart. If a line for the
// ingredient already exists its quantity is incremented and the original
// price/name/image snapshot kept; otherwise a new line is appended with the
// provided snapshot values. Returns the resulting line.
func (u *User) AddCartLine(line CartLine) (CartLine, error) {
	if line.Quantity < 1 {
		return CartLine{}, ErrInvalidQuantity
	}
	for i := range u.cart {
		if u.cart[i].IngredientID == line.IngredientID {
			u.cart[i].Quantity += line.Quantity
			u.touch()
			return u.cart[i], nil
		}
	}
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now()
	}
	u.cart = append(u.cart, line)
	u.touch()
	return line, nil
}

// UpdateCartLine sets the absolute quantity of an existing line.
func (u *User) UpdateCartLine(ingredientID string, quantity int) (CartLine, error) {
	if quantity < 1 {
		return CartLine{}, ErrInvalidQuantity
	}
	for i := range u.cart {
		if u.cart[i].IngredientID == ingredientID {
			u.cart[i].Quantity = quantity
			u.touch()
			return u.cart[i], nil
		}
	}
	return CartLine{}, ErrItemNotInCart
}

// RemoveCartLine deletes the line for ingredientID.
func (u *User) RemoveCartLine(ingredientID string) error {
	for i := range u.cart {
		if u.cart[i].IngredientID == ingredientID {
			u.cart = append(u.cart[:i], u.cart[i+1:]...)
			u.touch()
			return nil
		}
	}
	return ErrItemNotInCart
}

// ClearCart empties the cart unconditionally.
func (u *User) ClearCart() {
	u.cart = nil
	u.touch()
}

// CartTotals computes the item count and total price of the cart.
// totalItems sums line quantities; totalPrice is rounded half-up to two
// decimal places.
func (u *User) CartTotals() (totalItems int, totalPrice float64) {
	for _, line := range u.cart {
		totalItems += line.Quantity
		totalPrice += line.Price * float64(line.Quantity)
	}
	return totalItems, RoundPrice(totalPrice)
}

// RoundPrice rounds a monetary amount half-up to two decimal places.
func RoundPrice(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func (u *User) addAuthMethod(method AuthMethod) {
	if !u.SupportsAuthMethod(method) {
		u.authMethods = append(u.authMethods, method)
	}
}

func (u *User) touch() {
	u.updatedAt = time.Now()
}

func hashPassword(password string) (string, error) {
	if len(password) < 6 {
		return "", ErrPasswordTooShort
	}
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return ErrUsernameTooShort
	}
	if len(username) > 30 {
		return ErrUsernameTooLong
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") || len(email) > 255 {
		return ErrInvalidEmail
	}
	return nil
}
