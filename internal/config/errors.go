package config

import "errors"

// Store errors.
var (
	// ErrInvalidDocument indicates the loaded data is not valid JSON.
	ErrInvalidDocument = errors.New("config: invalid JSON document")

	// ErrNoBackingFile indicates Watch was called on an in-memory store.
	ErrNoBackingFile = errors.New("config: no backing file to watch")
)
