package recognize

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrEngineUnavailable is returned when the recognition engine cannot be
	// invoked at all: missing native library, binary, or trained data. It is
	// fatal for a batch; a recognition miss on one raster is not.
	ErrEngineUnavailable = errors.New("recognition engine unavailable")

	// ErrRecognitionTimeout is returned when a single document exceeds the
	// configured recognition deadline. It fails that document only.
	ErrRecognitionTimeout = errors.New("recognition timed out")
)

// RecognitionError wraps errors with additional context about the
// recognition failure.
type RecognitionError struct {
	// Op is the operation that failed (e.g., "Recognize", "SelfCheck").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RecognitionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("recognize: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("recognize: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *RecognitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
