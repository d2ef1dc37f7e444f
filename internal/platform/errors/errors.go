package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrNoData            = errors.New("no usage data")
)
