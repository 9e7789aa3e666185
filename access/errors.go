package access

import "errors"

var (
	// ErrPermissionDenied indicates the caller does not hold the required role.
	ErrPermissionDenied = errors.New("access: permission denied")

	// ErrLastAdmin indicates a revocation would leave the Admin role with no members.
	ErrLastAdmin = errors.New("access: cannot revoke the last admin")

	// ErrUnknownRole indicates a role value outside the defined set.
	ErrUnknownRole = errors.New("access: unknown role")

	// ErrInvalidRoleData indicates serialized role data is malformed.
	ErrInvalidRoleData = errors.New("access: invalid role data")

	// ErrInvalidAddress indicates an address could not be decoded or encoded.
	ErrInvalidAddress = errors.New("access: invalid address")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("access: nil parameter")
)
