package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrSubmissionFailed is returned when the remote settles without a
	// receipt.
	ErrSubmissionFailed = errors.New("prompt: submission failed")
)
