package domain

import "errors"

// ErrValidation is the root of all input validation failures. Specific
// validation errors wrap it so callers can match with errors.Is.
var ErrValidation = errors.New("validation failed")
