package services

import "errors"

var (
	// ErrUserExists is returned when registering with an email that is
	// already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned on login when the email is
	// unknown or the password does not match. Callers must not be able
	// to tell which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmptyOrder is returned when an order is placed with no lines.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrUnknownPizza is returned when an order line references a pizza
	// that is not in the catalogue.
	ErrUnknownPizza = errors.New("unknown pizza")

	// ErrInvalidStatus is returned when a status string is outside the
	// known set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTransition is returned when the requested status change
	// is not allowed from the order's current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotOwner is returned when a customer tries to cancel an order
	// they did not place.
	ErrNotOwner = errors.New("order belongs to another user")
)
