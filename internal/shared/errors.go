package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Source export errors (fatal to a run)
	ErrSourceMissing   = fmt.Errorf("library export not found")
	ErrSourceMalformed = fmt.Errorf("library export malformed")

	// Sink errors
	ErrSinkUnavailable = fmt.Errorf("document store unavailable")
	ErrBatchFailed     = fmt.Errorf("write batch failed")
	ErrIndexSetup      = fmt.Errorf("index setup failed")

	// Run history errors
	ErrRunNotFound = fmt.Errorf("run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
