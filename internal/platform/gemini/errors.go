package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidResponse is returned when the model reply cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned when retries are exhausted on temporary errors
	ErrTransientFailure = errors.New("transient error calling language model")

	// ErrInvalidConfig is returned when the classifier configuration is invalid
	ErrInvalidConfig = errors.New("invalid gemini configuration")
)
