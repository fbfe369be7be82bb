package transport

import "errors"

var (
	// ErrAllEndpointsFailed is returned when every candidate for a logical
	// call was tried and none produced a usable response.
	ErrAllEndpointsFailed = errors.New("all endpoint candidates failed")
)
