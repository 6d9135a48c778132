package value_objects

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
)

// Priority represents task urgency level.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

// DefaultPriority is used when no priority is given.
const DefaultPriority = PriorityMedium

var (
	ErrInvalidPriority = fmt.Errorf("%w: priority must be high, medium or low", domain.ErrValidation)
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
}

var priorityValues = map[string]Priority{
	"low":    PriorityLow,
	"medium": PriorityMedium,
	"high":   PriorityHigh,
}

// ParsePriority creates a Priority from a string. An empty string yields
// DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPriority, nil
	}
	p, ok := priorityValues[strings.ToLower(s)]
	if !ok {
		return 0, ErrInvalidPriority
	}
	return p, nil
}

// String returns the string representation of the priority.
func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the priority is a valid value.
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

// Rank returns the sort position of the priority: high sorts first (0),
// low last (2).
func (p Priority) Rank() int {
	return int(PriorityHigh - p)
}
