package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrMissingToken          = errors.New("missing token")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInactiveUser          = errors.New("user is inactive")
	ErrNotMember             = errors.New("not a league member")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrAlreadyMember         = errors.New("already a league member")
	ErrLeagueFull            = errors.New("league is full")
	ErrDuplicate             = errors.New("duplicate resource")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
