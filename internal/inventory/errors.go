package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// Remote operation failures. Gateway errors wrap one of these together with
// the transport cause, so callers can test with errors.Is.
var (
	ErrFetch     = errors.New("error fetching inventory")
	ErrCreate    = errors.New("error adding food to inventory")
	ErrDelete    = errors.New("error deleting product")
	ErrDeleteAll = errors.New("error deleting inventory")
	ErrUpdate    = errors.New("error updating expiry date")
)

// Local conditions.
var (
	ErrNotFound       = errors.New("item not found")
	ErrSuperseded     = errors.New("update superseded by a newer edit")
	ErrUnknownSortKey = errors.New("unknown sort key")
)

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func wrap(kind, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}

// Message converts err into the short text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Reason != "" {
			return capitalize(verr.Reason)
		}
		return "Missing required fields"
	}
	for _, kind := range []error{ErrFetch, ErrCreate, ErrDelete, ErrDeleteAll, ErrUpdate, ErrNotFound, ErrUnknownSortKey} {
		if errors.Is(err, kind) {
			return capitalize(kind.Error())
		}
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
