package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds element and event identifiers.
const maxIDLength = 256

// ValidateID validates an element or event identifier from a document.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - Maximum length of 256 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidDocument, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidDocument, "%s id %q contains invalid characters", kind, id)
		}
	}

	return nil
}

// ValidateRange checks that an engraving option lies within [min, max].
// NaN and infinities are always rejected.
func ValidateRange(name string, v, min, max float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidOption, "%s must be a finite number", name)
	}
	if v < min || v > max {
		return New(ErrCodeInvalidOption, "%s = %g out of range [%g, %g]", name, v, min, max)
	}
	return nil
}

// ValidateEnum checks that v is one of allowed. The empty string is accepted
// and means "use the default".
func ValidateEnum(name, v string, allowed ...string) error {
	if v == "" {
		return nil
	}
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return New(ErrCodeInvalidDocument, "%s %q must be one of: %s", name, v, strings.Join(allowed, ", "))
}
