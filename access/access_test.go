package access

import (
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeID(seed byte) Identity {
	var id Identity
	for i := range id {
		id[i] = seed
	}
	return id
}

// --- Role set tests ---

func TestRoleSet_GrantRevokeHas(t *testing.T) {
	admin := makeID(0x01)
	other := makeID(0x02)

	s := NewRoleSet(admin)
	assert.True(t, s.Has(RoleAdmin, admin))
	assert.False(t, s.Has(RoleAdmin, other))
	assert.False(t, s.Has(RoleRewardSetter, admin))

	require.NoError(t, s.Grant(RoleRewardSetter, other))
	require.NoError(t, s.Grant(RoleChildSetter, other))
	assert.True(t, s.Has(RoleRewardSetter, other))
	assert.True(t, s.Has(RoleChildSetter, other))

	require.NoError(t, s.Revoke(RoleRewardSetter, other))
	assert.False(t, s.Has(RoleRewardSetter, other))
	assert.True(t, s.Has(RoleChildSetter, other))
}

func TestRoleSet_GrantIdempotent(t *testing.T) {
	admin := makeID(0x01)
	s := NewRoleSet(admin)
	require.NoError(t, s.Grant(RoleAdmin, admin))
	assert.Len(t, s.Members(RoleAdmin), 1)
}

func TestRoleSet_RevokeNotHeld(t *testing.T) {
	s := NewRoleSet(makeID(0x01))
	// Revoking a role that was never granted is a no-op.
	require.NoError(t, s.Revoke(RoleChildSetter, makeID(0x02)))
}

func TestRoleSet_LastAdmin(t *testing.T) {
	admin := makeID(0x01)
	second := makeID(0x02)

	s := NewRoleSet(admin)
	err := s.Revoke(RoleAdmin, admin)
	assert.ErrorIs(t, err, ErrLastAdmin)
	assert.True(t, s.Has(RoleAdmin, admin), "failed revoke must not mutate")

	// With a second admin the first can leave.
	require.NoError(t, s.Grant(RoleAdmin, second))
	require.NoError(t, s.Revoke(RoleAdmin, admin))
	assert.False(t, s.Has(RoleAdmin, admin))
	assert.True(t, s.Has(RoleAdmin, second))
}

func TestRoleSet_Require(t *testing.T) {
	s := NewRoleSet(makeID(0x01))
	assert.NoError(t, s.Require(RoleAdmin, makeID(0x01)))
	assert.ErrorIs(t, s.Require(RoleAdmin, makeID(0x02)), ErrPermissionDenied)
	assert.ErrorIs(t, s.Require(RoleRewardSetter, makeID(0x01)), ErrPermissionDenied)
}

func TestRoleSet_UnknownRole(t *testing.T) {
	s := NewRoleSet(makeID(0x01))
	assert.ErrorIs(t, s.Grant(Role(99), makeID(0x02)), ErrUnknownRole)
	assert.ErrorIs(t, s.Revoke(Role(99), makeID(0x02)), ErrUnknownRole)
	assert.False(t, s.Has(Role(99), makeID(0x01)))
}

func TestRoleSet_SerializeRoundTrip(t *testing.T) {
	s := NewRoleSet(makeID(0x01))
	require.NoError(t, s.Grant(RoleAdmin, makeID(0x02)))
	require.NoError(t, s.Grant(RoleRewardSetter, makeID(0x03)))
	require.NoError(t, s.Grant(RoleChildSetter, makeID(0x04)))
	require.NoError(t, s.Grant(RoleChildSetter, makeID(0x05)))

	data, err := s.Serialize()
	require.NoError(t, err)

	decoded, err := DeserializeRoleSet(data)
	require.NoError(t, err)

	for _, role := range []Role{RoleAdmin, RoleRewardSetter, RoleChildSetter} {
		assert.ElementsMatch(t, s.Members(role), decoded.Members(role), role.String())
	}
}

func TestDeserializeRoleSet_Truncated(t *testing.T) {
	_, err := DeserializeRoleSet([]byte{0x00, 0x00})
	assert.ErrorIs(t, err, ErrInvalidRoleData)

	// Header claims more identities than the data carries.
	_, err = DeserializeRoleSet([]byte{0x00, 0x00, 0x00, 0x00, 0x05})
	assert.ErrorIs(t, err, ErrInvalidRoleData)
}

func TestDeserializeRoleSet_UnknownRole(t *testing.T) {
	_, err := DeserializeRoleSet([]byte{0x07, 0x00, 0x00, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

// --- Identity tests ---

func TestIdentityFromPublicKey(t *testing.T) {
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)

	id, err := IdentityFromPublicKey(priv.PubKey())
	require.NoError(t, err)
	assert.NotEqual(t, Identity{}, id)

	// Deterministic for the same key.
	again, err := IdentityFromPublicKey(priv.PubKey())
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestIdentityFromPublicKey_Nil(t *testing.T) {
	_, err := IdentityFromPublicKey(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}

func TestIdentity_AddressRoundTrip(t *testing.T) {
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	id, err := IdentityFromPublicKey(priv.PubKey())
	require.NoError(t, err)

	addr, err := id.Address()
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	parsed, err := ParseAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseAddress_Invalid(t *testing.T) {
	_, err := ParseAddress("not a base58 address")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "reward-setter", RoleRewardSetter.String())
	assert.Equal(t, "child-setter", RoleChildSetter.String())
}
