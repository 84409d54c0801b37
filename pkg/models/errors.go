package models

import "errors"

// Sentinel errors shared by the store, the engine and the CLI
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidAlgorithm = errors.New("invalid matching algorithm")
	ErrInvalidInterest  = errors.New("invalid candidate interest")
)
