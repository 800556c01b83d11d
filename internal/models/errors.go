package models

import "errors"

// Input errors. Each maps to a caller-facing message via PublicMessage.
var (
	// ErrMalformedInput covers a missing or non-numeric total and splits that
	// are missing, not an object, or hold a non-numeric amount.
	ErrMalformedInput = errors.New("malformed input")

	// ErrNegativeValue is returned for a negative total or participant amount.
	ErrNegativeValue = errors.New("negative value")

	// ErrNoParticipants is returned when splits is empty.
	ErrNoParticipants = errors.New("no participants")

	// ErrEmptyName is returned when a participant has a blank name.
	ErrEmptyName = errors.New("empty participant name")

	// ErrInvalidCount is returned when an even split is asked for fewer than one
	// slot or more than the allocator allows.
	ErrInvalidCount = errors.New("invalid participant count")
)

var publicMessages = []struct {
	err error
	msg string
}{
	{ErrMalformedInput, "Invalid input. Total must be a number and splits must be an object."},
	{ErrNegativeValue, "Negative values are not allowed."},
	{ErrNoParticipants, "At least one participant is required."},
	{ErrEmptyName, "Participant names must not be empty."},
	{ErrInvalidCount, "Participant count must be between 1 and 10000."},
}

// IsInputError reports whether err is caused by bad caller input rather than
// a failure of the service.
func IsInputError(err error) bool {
	for _, m := range publicMessages {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}

// PublicMessage returns the caller-facing message for err. Wrapped input
// errors collapse to a fixed sentence so internal detail does not leak.
func PublicMessage(err error) string {
	for _, m := range publicMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return "Internal error."
}
