package errs

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrAuth       = errors.New("authentication failed")
	ErrValidation = errors.New("validation failed")
)
