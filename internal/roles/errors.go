package roles

import (
	"errors"
	"fmt"
)

var (
	// ErrInputRejected means the text failed an input gate and no model call was made.
	ErrInputRejected = errors.New("input rejected")
	// ErrOutOfContext means the analysis reply did not talk about job roles.
	ErrOutOfContext = errors.New("analysis is out of context")
	// ErrNoRoles means no role list could be extracted from the model.
	ErrNoRoles = errors.New("failed to extract job roles")
)

// RejectedError names the gate that rejected the input.
type RejectedError struct {
	Check string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s by %s check", ErrInputRejected, e.Check)
}

func (e *RejectedError) Unwrap() error { return ErrInputRejected }
