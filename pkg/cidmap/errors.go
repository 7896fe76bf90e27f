package cidmap

import (
	"github.com/agenthands/cidmap/pkg/core"
)

var (
	ErrNotFound     = core.ErrNotFound
	ErrInvalidInput = core.ErrInvalidInput
	ErrCorrupt      = core.ErrCorrupt
	ErrTooLarge     = core.ErrTooLarge
	ErrTableFull    = core.ErrTableFull
)
