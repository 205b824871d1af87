package core

// errors.go defines the error taxonomy for the inventory core and maps
// errors to user-facing messages with codes for support reference.
//
// Codes:
//
//	SRC001 - Source unavailable: backing workbook/remote missing or unreachable
//	SRC002 - Parse error: a sheet could not be decoded (table degrades to empty)
//	INV001 - Not found: mutation targets a nonexistent stock row
//	INV002 - Insufficient stock: sell quantity exceeds current stock
//	INV003 - Invalid argument: bad quantity or blank ids
//	PER001 - Persistence failure: write-back failed, in-memory change kept
//	ERR000 - Unknown error (fallback)
//
// Callers classify with errors.Is against the sentinels below; wrapped
// detail text is logged server-side, never shown to clients verbatim.

import "errors"

// Sentinel errors for the core taxonomy. Wrap with fmt.Errorf("%w: ...")
// to attach detail while keeping errors.Is classification.
var (
	ErrSourceUnavailable  = errors.New("source unavailable")
	ErrParseError         = errors.New("parse error")
	ErrNotFound           = errors.New("item not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrPersistenceFailure = errors.New("persistence failure")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// MapError converts a technical error to a user-friendly message.
// Unknown errors fall back to ERR000.
func MapError(err error) UserMessage {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return UserMessage{
			Message: "Insufficient stock",
			Action:  "Refill the machine or reduce the quantity",
			Code:    "INV002",
		}
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Message: "Item not found",
			Action:  "Check the machine and product ids",
			Code:    "INV001",
		}
	case errors.Is(err, ErrInvalidArgument):
		return UserMessage{
			Message: "Invalid request",
			Action:  "Quantity must be a whole number and ids must be non-empty",
			Code:    "INV003",
		}
	case errors.Is(err, ErrPersistenceFailure):
		return UserMessage{
			Message: "Change applied but could not be saved to the source",
			Action:  "The next successful operation will write it back; check the backing store",
			Code:    "PER001",
		}
	case errors.Is(err, ErrSourceUnavailable):
		return UserMessage{
			Message: "Backing data source is unavailable",
			Action:  "Verify the workbook path or remote store and try again",
			Code:    "SRC001",
		}
	case errors.Is(err, ErrParseError):
		return UserMessage{
			Message: "Backing data could not be parsed",
			Action:  "Check the sheet layout against the expected columns",
			Code:    "SRC002",
		}
	default:
		return UserMessage{
			Message: "An unexpected error occurred",
			Action:  "Please try again or contact support",
			Code:    "ERR000",
		}
	}
}
