package domain

import "errors"

var (
	// ErrInvalidArgument is returned when a required engine, order or tick is absent or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBookFull is returned when placing an order would exceed the book capacity.
	ErrBookFull = errors.New("order book full")

	// ErrNotFound is returned when cancelling an order that is not currently active.
	// Filled, cancelled and never-placed orders are indistinguishable.
	ErrNotFound = errors.New("order not found")

	// ErrOutOfOrder is returned when an event timestamp moves backwards.
	ErrOutOfOrder = errors.New("event out of order")

	// ErrLengthMismatch is returned when batch columns differ in length
	ErrLengthMismatch = errors.New("batch length mismatch")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err carries a *ConfigError and returns the field.
func IsConfigError(err error) (string, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Field, true
	}
	return "", false
}
