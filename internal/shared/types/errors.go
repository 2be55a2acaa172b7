package types

import "errors"

var (
	// ErrDuplicateUnit is returned when a unit's trigger key is already registered.
	ErrDuplicateUnit = errors.New("unit already registered")

	// ErrRegistryFrozen is returned when registering after the construction phase.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrUnitNotFound is returned when no unit matches a trigger key.
	ErrUnitNotFound = errors.New("unit not found")
)
