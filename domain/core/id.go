package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RiskID       ID
	StrategyID   ID
	ScenarioID   ID
	SimulationID ID
)

// String conversions for domain IDs
func (id RiskID) String() string       { return ID(id).String() }
func (id StrategyID) String() string   { return ID(id).String() }
func (id ScenarioID) String() string   { return ID(id).String() }
func (id SimulationID) String() string { return ID(id).String() }

// ParseRiskID parses a string into RiskID
func ParseRiskID(s string) (RiskID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("risk ID cannot be empty")
	}
	return RiskID(s), nil
}

// ParseStrategyID parses a string into StrategyID
func ParseStrategyID(s string) (StrategyID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("strategy ID cannot be empty")
	}
	return StrategyID(s), nil
}

// NewSimulationID generates a fresh simulation identifier
func NewSimulationID() SimulationID {
	return SimulationID(NewID())
}

// NewScenarioID generates a fresh scenario identifier
func NewScenarioID() ScenarioID {
	return ScenarioID(NewID())
}
