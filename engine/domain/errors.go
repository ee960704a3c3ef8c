package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline failures.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrCostLimitExceeded    = errors.New("cost limit exceeded")
	ErrRealMoneyDisabled    = errors.New("real-money runs are disabled")
	ErrProvider             = errors.New("provider error")
	ErrPersistence          = errors.New("persistence error")
	ErrRunNotFound          = errors.New("run not found")
)

// ConfigError wraps ErrInvalidConfiguration with the offending field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// NewConfigError creates a ConfigError.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// ProviderError wraps a failure from the keyword-volume provider for one batch.
type ProviderError struct {
	Market     string
	BatchIndex int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: market %s batch %d: %v", e.Market, e.BatchIndex, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ProviderError) Unwrap() []error { return []error{ErrProvider, e.Err} }

// CostError wraps a cost-guard sentinel with the amounts involved.
type CostError struct {
	Estimated float64
	Limit     float64
	Wrapped   error
}

func (e *CostError) Error() string {
	return fmt.Sprintf("%s (estimated=$%.4f limit=$%.4f)", e.Wrapped, e.Estimated, e.Limit)
}

func (e *CostError) Unwrap() error { return e.Wrapped }
