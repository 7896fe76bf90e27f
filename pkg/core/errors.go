package core

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("cidmap: not found")
	ErrInvalidInput = errors.New("cidmap: invalid input")
	ErrCorrupt      = errors.New("cidmap: corrupt data")
	ErrTooLarge     = errors.New("cidmap: too large")
	ErrTableFull    = errors.New("cidmap: table full")
)
