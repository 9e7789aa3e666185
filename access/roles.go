package access

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Role identifies one permission category.
type Role uint8

const (
	// RoleAdmin manages all role memberships, including its own.
	RoleAdmin Role = iota
	// RoleRewardSetter changes a unit's reward multiplier.
	RoleRewardSetter
	// RoleChildSetter creates and removes child units.
	RoleChildSetter

	numRoles
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleRewardSetter:
		return "reward-setter"
	case RoleChildSetter:
		return "child-setter"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Valid reports whether r is a defined role.
func (r Role) Valid() bool { return r < numRoles }

// RoleSet holds the membership sets for all roles of one unit.
//
// The zero value is empty and ready for use. RoleSet is a plain value type
// with no internal locking; the distributor store serializes access to it.
type RoleSet struct {
	members [numRoles]map[Identity]struct{}
}

// NewRoleSet returns a role set with admin as the sole Admin member.
func NewRoleSet(admin Identity) *RoleSet {
	s := &RoleSet{}
	s.Grant(RoleAdmin, admin)
	return s
}

// Grant adds id to the membership set of role. Granting an already held role
// is a no-op.
func (s *RoleSet) Grant(role Role, id Identity) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownRole, uint8(role))
	}
	if s.members[role] == nil {
		s.members[role] = make(map[Identity]struct{})
	}
	s.members[role][id] = struct{}{}
	return nil
}

// Revoke removes id from the membership set of role. Revoking a role that is
// not held is a no-op. Revoking the last remaining Admin fails with
// ErrLastAdmin so role management can never be locked out.
func (s *RoleSet) Revoke(role Role, id Identity) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownRole, uint8(role))
	}
	if _, held := s.members[role][id]; !held {
		return nil
	}
	if role == RoleAdmin && len(s.members[RoleAdmin]) == 1 {
		return ErrLastAdmin
	}
	delete(s.members[role], id)
	return nil
}

// Has reports whether id holds role.
func (s *RoleSet) Has(role Role, id Identity) bool {
	if !role.Valid() {
		return false
	}
	_, held := s.members[role][id]
	return held
}

// Require returns ErrPermissionDenied unless id holds role.
func (s *RoleSet) Require(role Role, id Identity) error {
	if !s.Has(role, id) {
		return fmt.Errorf("%w: %s requires %s", ErrPermissionDenied, id, role)
	}
	return nil
}

// Members returns the identities holding role. Order is unspecified.
func (s *RoleSet) Members(role Role) []Identity {
	if !role.Valid() {
		return nil
	}
	ids := make([]Identity, 0, len(s.members[role]))
	for id := range s.members[role] {
		ids = append(ids, id)
	}
	return ids
}

// Serialization format, per role in ascending role order:
//
//	role(1) || count(4, big-endian) || identity(20)*count
const (
	roleHeaderSize = 5
)

// Serialize encodes the role set to binary format.
func (s *RoleSet) Serialize() ([]byte, error) {
	size := 0
	for role := Role(0); role < numRoles; role++ {
		if len(s.members[role]) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d members", ErrInvalidRoleData, len(s.members[role]))
		}
		size += roleHeaderSize + IdentitySize*len(s.members[role])
	}
	buf := make([]byte, size)
	offset := 0

	for role := Role(0); role < numRoles; role++ {
		buf[offset] = byte(role)
		offset++
		binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(s.members[role])))
		offset += 4
		// Map order is fine here: membership is a set and readers never
		// depend on entry order.
		for id := range s.members[role] {
			copy(buf[offset:offset+IdentitySize], id[:])
			offset += IdentitySize
		}
	}
	return buf, nil
}

// DeserializeRoleSet decodes binary data into a RoleSet.
func DeserializeRoleSet(data []byte) (*RoleSet, error) {
	s := &RoleSet{}
	offset := 0
	for offset < len(data) {
		if len(data)-offset < roleHeaderSize {
			return nil, fmt.Errorf("%w: truncated header at %d", ErrInvalidRoleData, offset)
		}
		role := Role(data[offset])
		if !role.Valid() {
			return nil, fmt.Errorf("%w: role %d", ErrUnknownRole, data[offset])
		}
		offset++
		count := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		offset += 4
		if len(data)-offset < IdentitySize*count {
			return nil, fmt.Errorf("%w: expected %d identities for %s", ErrInvalidRoleData, count, role)
		}
		for i := 0; i < count; i++ {
			var id Identity
			copy(id[:], data[offset:offset+IdentitySize])
			offset += IdentitySize
			if err := s.Grant(role, id); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}
