package directory

import "errors"

var (
	// ErrInvalidHandle indicates the payout handle is not "alias@domain".
	ErrInvalidHandle = errors.New("directory: invalid payout handle")

	// ErrLookupFailed indicates a DNS SRV/TXT lookup failed.
	ErrLookupFailed = errors.New("directory: DNS lookup failed")

	// ErrNoRecord indicates no matching record was found.
	ErrNoRecord = errors.New("directory: no matching record")

	// ErrInvalidRecord indicates a payto record could not be decoded.
	ErrInvalidRecord = errors.New("directory: invalid payto record")

	// ErrDNSSECValidationFailed indicates the response was not authenticated.
	ErrDNSSECValidationFailed = errors.New("directory: DNSSEC validation failed")
)
