package grid

import "fmt"

// Validation error codes. These are stable identifiers consumed by the
// application layer; presentation (toasts, highlighting) happens there.
const (
	ErrOutOfBounds     = "OUT_OF_BOUNDS"
	ErrCellOccupied    = "CELL_OCCUPIED"
	ErrNoSupport       = "NO_SUPPORT"
	ErrInvalidPosition = "INVALID_POSITION"
)

var knownCodes = map[string]struct{}{
	ErrOutOfBounds:     {},
	ErrCellOccupied:    {},
	ErrNoSupport:       {},
	ErrInvalidPosition: {},
}

func IsKnownCode(code string) bool {
	_, ok := knownCodes[code]
	return ok
}

// ValidationError reports a single rule violation with the offending
// cell attached. It is returned as a value, never panicked.
type ValidationError struct {
	Code     string   `json:"code"`
	Position Position `json:"position"`
	Message  string   `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Position, e.Message)
}

// ValidationResult carries every violation found for one intent.
// Checks do not short-circuit: the caller gets the complete set.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

func validationFailure(errs []ValidationError) ValidationResult {
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
