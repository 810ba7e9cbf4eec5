package shared

import (
	"fmt"

	"github.com/minimarket/minimarket/internal/platform/httpx"
)

var (
	ErrNotFound  = fmt.Errorf("master data %w", httpx.ErrNotFound)
	ErrInUse     = fmt.Errorf("record is referenced by other data: %w", httpx.ErrConflict)
	ErrInvalidID = fmt.Errorf("invalid ID: %w", httpx.ErrValidation)
)
