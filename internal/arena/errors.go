package arena

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidOptions  = errors.New("invalid arena options")
	ErrUnsupportedMode = errors.New("unsupported match mode")
)
