package model

import "github.com/pkg/errors"

// Model definition errors. They are returned wrapped with the failing call's
// context; match them with errors.Is.
var (
	ErrRowOutOfRange     = errors.New("model: row out of range")
	ErrColumnOutOfRange  = errors.New("model: column out of range")
	ErrBadBounds         = errors.New("model: upper bound must be >= lower bound")
	ErrInfiniteLower     = errors.New("model: lower bound must be finite")
	ErrBadDimensions     = errors.New("model: vector length does not match model size")
	ErrBadConstraintType = errors.New("model: unknown constraint type")
	ErrNaN               = errors.New("model: NaN value")
)
