package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrConflict        = errors.New("conflicting state")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("caller identity required")
	ErrForbidden       = errors.New("operation not permitted")

	// Claim / coupon flow
	ErrNotReadymade   = errors.New("menu is not a readymade shop")
	ErrCouponRedeemed = errors.New("coupon already redeemed")

	// Infra
	ErrInvalidExecContext = errors.New("invalid executor passed to repository")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
