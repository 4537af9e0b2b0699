package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUnexpectedResponse = fmt.Errorf("unexpected response")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Lookup errors
	ErrNotFound      = fmt.Errorf("not found")
	ErrNoMatch       = fmt.Errorf("no matching artist")
	ErrRouteNotFound = fmt.Errorf("route not found")

	// Playback errors
	ErrPlaybackFailed    = fmt.Errorf("playback failed")
	ErrUnsupportedFormat = fmt.Errorf("unsupported audio format")
	ErrNothingLoaded     = fmt.Errorf("no preview loaded")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
