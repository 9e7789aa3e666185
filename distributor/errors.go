package distributor

import "errors"

var (
	// ErrUnauthorizedCaller indicates a caller other than the configured
	// ledger invoked the distribution entry point.
	ErrUnauthorizedCaller = errors.New("distributor: caller is not the configured ledger")

	// ErrUnknownChild indicates the handle is not in the registry.
	ErrUnknownChild = errors.New("distributor: child not registered")

	// ErrDuplicateChild indicates the handle is already in the registry.
	ErrDuplicateChild = errors.New("distributor: child already registered")

	// ErrUnknownUnit indicates no unit record exists for the handle.
	ErrUnknownUnit = errors.New("distributor: unknown unit")

	// ErrInvalidRegistryData indicates serialized registry data is malformed.
	ErrInvalidRegistryData = errors.New("distributor: invalid registry data")

	// ErrInvalidOptions indicates the open options are incomplete.
	ErrInvalidOptions = errors.New("distributor: invalid options")
)
