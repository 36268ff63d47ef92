package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEquipment is returned when an identifier is not in the catalog.
	ErrUnknownEquipment = errors.New("unknown equipment")
	// ErrInvalidConfiguration covers negative counts and bad battery heights.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidParameter covers simulation and optimizer parameters out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// LookupError reports an equipment identifier missing from the catalog.
type LookupError struct {
	ID string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown equipment %q", e.ID)
}

func (e *LookupError) Unwrap() error { return ErrUnknownEquipment }

// ConfigError reports an invalid value in a Configuration.
type ConfigError struct {
	ID     string
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s=%v: %s", e.ID, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// ParamError reports a simulation or search parameter out of range.
type ParamError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }
