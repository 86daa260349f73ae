package ddns

import "errors"

// Errors returned by a Client are wrapped around one of these,
// so callers can tell the failure classes apart with errors.Is.
var (
	// ErrIPFetch means the public IP could not be determined and the cycle was skipped.
	ErrIPFetch = errors.New("public IP lookup failed")
	// ErrDNSRead means the provider could not be asked for the current record.
	ErrDNSRead = errors.New("DNS record lookup failed")
	// ErrDNSWrite means an update or create call to the provider failed.
	ErrDNSWrite = errors.New("DNS record write failed")
)
