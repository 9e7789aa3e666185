// Package bank defines the fungible-token transfer collaborator used by the
// reward distributor, together with a bbolt-backed reference implementation.
//
// The distributor never moves tokens itself: it hands the bank one batch of
// transfers per distribution event and relies on the bank's all-or-nothing
// contract for payout atomicity.
package bank

import (
	"encoding/hex"

	"github.com/fanoutorg/libfanout-go/access"
)

// TokenIDSize is the length of a token identifier in bytes.
const TokenIDSize = 32

// TokenID identifies one fungible asset.
type TokenID [TokenIDSize]byte

// String returns the hex form of the token identifier.
func (t TokenID) String() string {
	return hex.EncodeToString(t[:])
}

// Transfer moves Amount units of Token from one account to another.
type Transfer struct {
	Token  TokenID
	From   access.Identity
	To     access.Identity
	Amount uint64
}

// Bank executes token transfers.
//
// Pay MUST be atomic: either every transfer in the batch is applied or none
// is. A failed batch leaves every balance exactly as it was. Implementations
// may assume batches are small (one transfer per distributor unit).
type Bank interface {
	// Pay applies the batch of transfers atomically, in order.
	Pay(transfers []Transfer) error

	// Balance returns the balance of id in token. Accounts that never
	// received the token have a zero balance.
	Balance(token TokenID, id access.Identity) (uint64, error)
}
