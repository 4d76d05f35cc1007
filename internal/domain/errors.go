package domain

import "errors"

var (
	// ErrInstanceNotFound means the caller owns no instance.
	ErrInstanceNotFound = errors.New("instance not found")
	// ErrPoolExhausted means no available+unowned instance exists. This is an
	// expected business outcome, not a fault.
	ErrPoolExhausted = errors.New("no available instance in pool")
	// ErrInvalidToken means the bearer token failed verification.
	ErrInvalidToken = errors.New("invalid bearer token")
)
