// Package access implements the role model gating every mutating operation
// of a reward distributor.
//
// Three independent roles exist: Admin manages all role memberships,
// RewardSetter changes a unit's multiplier, ChildSetter creates and removes
// child units. Identities are 20-byte hash-160 values, the same form as a
// P2PKH address hash.
package access

import (
	"encoding/hex"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// IdentitySize is the length of an identity in bytes.
const IdentitySize = 20

// Identity is a 20-byte hash-160 identifying a caller, controller, or payout
// recipient.
type Identity [IdentitySize]byte

// IdentityFromPublicKey derives an identity from a compressed secp256k1
// public key: RIPEMD160(SHA256(pubkey)).
func IdentityFromPublicKey(pub *ec.PublicKey) (Identity, error) {
	if pub == nil {
		return Identity{}, fmt.Errorf("%w: public key", ErrNilParam)
	}
	var id Identity
	copy(id[:], bsvhash.Hash160(pub.Compressed()))
	return id, nil
}

// ParseAddress decodes a base58check mainnet address into an identity.
func ParseAddress(addr string) (Identity, error) {
	a, err := script.NewAddressFromString(addr)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	if len(a.PublicKeyHash) != IdentitySize {
		return Identity{}, fmt.Errorf("%w: %q: hash is %d bytes", ErrInvalidAddress, addr, len(a.PublicKeyHash))
	}
	var id Identity
	copy(id[:], a.PublicKeyHash)
	return id, nil
}

// Address returns the base58check mainnet address form of the identity.
func (id Identity) Address() (string, error) {
	a, err := script.NewAddressFromPublicKeyHash(id[:], true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return a.AddressString, nil
}

// String returns the hex form of the identity.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}
