package explain

import "errors"

// Design decision: We use package-level sentinel errors because:
// 1. They enable precise error checking with errors.Is()
// 2. They provide consistent error messages across the package
// 3. Callers can distinguish configuration mistakes (unknown provider,
//    missing key) from transient provider failures (rate limits)
var (
	// ErrUnknownProvider is returned when the requested provider name
	// does not match any supported provider.
	ErrUnknownProvider = errors.New("unknown explanation provider")

	// ErrMissingAPIKey is returned when no API key was passed and the
	// provider's environment variable is unset or empty.
	ErrMissingAPIKey = errors.New("missing api key for explanation provider")

	// ErrRateLimited is returned when the provider rejected the request
	// because of rate limiting. Callers may retry later.
	ErrRateLimited = errors.New("explanation provider rate limited")

	// ErrEmptyResponse is returned when the provider answered without
	// any usable text content.
	ErrEmptyResponse = errors.New("explanation provider returned an empty response")
)
