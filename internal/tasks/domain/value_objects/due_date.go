package value_objects

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
)

// DueDateLayout is the calendar date format used for input and storage.
const DueDateLayout = "2006-01-02"

var (
	ErrInvalidDueDate = fmt.Errorf("%w: due date must use YYYY-MM-DD", domain.ErrValidation)
)

// DueDate is an optional calendar date. The zero value means "no due date".
type DueDate struct {
	value time.Time
}

// ParseDueDate parses a YYYY-MM-DD date. An empty string yields the zero DueDate.
func ParseDueDate(s string) (DueDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DueDate{}, nil
	}
	t, err := time.Parse(DueDateLayout, s)
	if err != nil {
		return DueDate{}, ErrInvalidDueDate
	}
	return DueDate{value: t}, nil
}

// NewDueDate truncates t to its calendar date.
func NewDueDate(t time.Time) DueDate {
	if t.IsZero() {
		return DueDate{}
	}
	y, m, d := t.Date()
	return DueDate{value: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsZero reports whether no due date is set.
func (d DueDate) IsZero() bool {
	return d.value.IsZero()
}

// Time returns the date at midnight UTC.
func (d DueDate) Time() time.Time {
	return d.value
}

// String returns the date as YYYY-MM-DD, or "" when unset.
func (d DueDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.value.Format(DueDateLayout)
}

// IsOverdue reports whether the date lies strictly before the calendar day of now.
func (d DueDate) IsOverdue(now time.Time) bool {
	if d.IsZero() {
		return false
	}
	return d.value.Before(NewDueDate(now).value)
}
