package comm

import "errors"

// Failure taxonomy for the runtime. Layers wrap these with %w so callers can
// classify a failure with errors.Is regardless of which layer produced it.
var (
	// ErrTimeout indicates a blocking operation's wait deadline elapsed.
	ErrTimeout = errors.New("operation timed out")

	// ErrVerification indicates a decode invariant did not hold
	// (MAC, signature, or replay counter mismatch).
	ErrVerification = errors.New("verification failed")

	// ErrMalformed indicates a message body is not parseable as the
	// expected structured record, or a required field is missing.
	ErrMalformed = errors.New("malformed message body")

	// ErrUnknownAction indicates no handler is registered for an action.
	ErrUnknownAction = errors.New("unknown action")

	// ErrTransform indicates a layer's encode or decode failed for any
	// other reason, such as a ciphertext being too short.
	ErrTransform = errors.New("transform failed")
)
