package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Validation errors
	ErrValidation          = errors.New("validation failed")
	ErrInvalidDistribution = fmt.Errorf("%w: invalid distribution parameters", ErrValidation)
	ErrInvalidCorrelation  = fmt.Errorf("%w: invalid correlation", ErrValidation)
	ErrEmptyRiskSet        = fmt.Errorf("%w: risk set is empty", ErrValidation)
	ErrDuplicateRisk       = fmt.Errorf("%w: duplicate risk id", ErrValidation)

	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrRiskNotFound     = fmt.Errorf("%w: risk", ErrNotFound)
	ErrStrategyNotFound = fmt.Errorf("%w: mitigation strategy", ErrNotFound)

	// Mitigation arithmetic errors - never silently coerced to zero or infinity
	ErrZeroRiskReduction  = errors.New("risk reduction is zero, cost-benefit ratio undefined")
	ErrZeroMitigationCost = errors.New("mitigation cost is zero, return on investment undefined")

	// Scenario errors
	ErrScenarioAliasing = errors.New("scenarios share a mutable nested object")

	// Run errors
	ErrSimulationTimeout = errors.New("simulation exceeded timeout")
)

// NewValidationError builds a field-scoped validation error
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, field, reason)
}

// NewCorrelationPairError reports an invalid correlation entry naming the offending pair
func NewCorrelationPairError(riskA, riskB string, reason string) error {
	return fmt.Errorf("%w between %s and %s: %s", ErrInvalidCorrelation, riskA, riskB, reason)
}

// IsValidationError reports whether err originated from input validation
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError reports whether err is a missing-resource error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeoutError reports whether err is a simulation timeout
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrSimulationTimeout)
}
