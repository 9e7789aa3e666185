package distributor

import (
	"encoding/hex"
	"fmt"

	"github.com/fanoutorg/libfanout-go/access"
	"github.com/fanoutorg/libfanout-go/bank"
)

// HandleSize is the length of a unit handle in bytes.
const HandleSize = 32

// Handle is an opaque reference to a distributor unit. Handles are minted at
// creation time and never reused.
type Handle [HandleSize]byte

// String returns the hex form of the handle.
func (h Handle) String() string {
	return hex.EncodeToString(h[:])
}

// Treasury returns the bank account holding the unit's reward funds.
func (h Handle) Treasury() access.Identity {
	var id access.Identity
	copy(id[:], h[:access.IdentitySize])
	return id
}

// unitRecord is the durable per-unit configuration. Token and Ledger are
// immutable after creation; Multiplier changes only through SetMultiplier.
type unitRecord struct {
	Token      bank.TokenID
	Multiplier uint64
	Ledger     access.Identity
}

// CreationRecord documents one child creation for observability.
type CreationRecord struct {
	Seq        uint64
	Handle     Handle
	Token      bank.TokenID
	Controller access.Identity
}

// Options configures Open. Token, Multiplier, Ledger, and Admin seed the root
// unit on a fresh database and are ignored when the database already holds
// one. Bank is required; Engine defaults to BasisEngine.
type Options struct {
	Token      bank.TokenID
	Multiplier uint64
	Ledger     access.Identity
	Admin      access.Identity
	Bank       bank.Bank
	Engine     Engine
}

func (o *Options) validate() error {
	if o.Bank == nil {
		return fmt.Errorf("%w: bank is required", ErrInvalidOptions)
	}
	if o.Ledger == (access.Identity{}) {
		return fmt.Errorf("%w: ledger identity is required", ErrInvalidOptions)
	}
	if o.Admin == (access.Identity{}) {
		return fmt.Errorf("%w: admin identity is required", ErrInvalidOptions)
	}
	return nil
}
