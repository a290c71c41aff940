package exchange

import (
	"errors"
	"fmt"
)

var (
	//
	// ErrInsufficientInformation is returned by strict accessors when a field has not been learned
	// yet. It is recoverable: fetching the relevant history usually fills the field in.
	//
	ErrInsufficientInformation = errors.New("insufficient information")

	ErrUnknownCurrency = errors.New("unknown currency")
	ErrUnknownPair     = errors.New("unknown pair")
	ErrNoPath          = errors.New("no exchange path")
	ErrNotSupported    = errors.New("not supported by this venue")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserCancelled   = errors.New("cancelled by user")

	//
	// ErrInvalidArgument is returned when a caller-supplied argument is malformed. It is always raised
	// before any request is issued.
	//
	ErrInvalidArgument = errors.New("invalid argument")

	//
	// ErrHistoryTruncated is returned when a venue hit its per-response trade cap, meaning the window
	// asked for could not be fetched in full.
	//
	ErrHistoryTruncated = errors.New("trade history truncated by the venue")
)

//
// APIError is an error reported by a venue that does not map onto any of the more specific errors
// above. The venue's message is carried verbatim.
//
type APIError struct {
	Venue   string
	Command string
	Message string
}

func NewAPIError(venue string, command string, message string) *APIError {
	return &APIError{
		Venue:   venue,
		Command: command,
		Message: message,
	}
}

func (o *APIError) Error() string {
	return fmt.Sprintf("the %s endpoint returned an API error (command: %s, message: %s)", o.Venue, o.Command, o.Message)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func insufficient(what string) error {
	return fmt.Errorf("%w: %s is unknown", ErrInsufficientInformation, what)
}
