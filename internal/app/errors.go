package app

import "errors"

// Sentinel errors for CLI wiring
var (
	ErrNotInitialized = errors.New("application not initialized")
)
