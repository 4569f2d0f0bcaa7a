package user

import "errors"

// Domain errors for user operations

var (
	// Entity validation errors
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrUsernameTooLong  = errors.New("username must not exceed 30 characters")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password too long")

	// Lookup and uniqueness errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoLocalAuth        = errors.New("account has no local password")
	ErrGoogleIDMismatch   = errors.New("email already linked to a different google account")

	// Cart errors
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotInCart   = errors.New("item not found in cart")
)
