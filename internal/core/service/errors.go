package service

import "errors"

var (
	ErrDuplicateRequest      = errors.New("duplicate request")
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidTrackingNumber = errors.New("invalid tracking number")
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
)
