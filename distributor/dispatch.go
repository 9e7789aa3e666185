package distributor

import (
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/fanoutorg/libfanout-go/access"
	"github.com/fanoutorg/libfanout-go/bank"
)

// unitShare is one unit's computed share of a distribution event.
type unitShare struct {
	handle Handle
	token  bank.TokenID
	amount uint64
}

// collectShares computes the scaled share of every unit touched by a
// distribution event: this unit first, then each registered child in current
// registry enumeration order. Every child re-scales the same unscaled amount
// by its own multiplier; sibling multipliers are independent factors over one
// shared base, not a partition of a pool.
func (d *Distributor) collectShares(tx *bbolt.Tx, position, amount uint64) ([]unitShare, error) {
	self, err := loadUnit(tx, d.handle)
	if err != nil {
		return nil, err
	}
	own, err := d.engine.PendingAmount(position, amount, self.Multiplier)
	if err != nil {
		return nil, fmt.Errorf("distributor: scale own share: %w", err)
	}

	registry, err := loadRegistry(tx, d.handle)
	if err != nil {
		return nil, err
	}

	shares := make([]unitShare, 0, 1+len(registry))
	shares = append(shares, unitShare{handle: d.handle, token: self.Token, amount: own})

	for _, child := range registry {
		rec, err := loadUnit(tx, child)
		if err != nil {
			return nil, err
		}
		scaled, err := d.engine.PendingAmount(position, amount, rec.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("distributor: scale child %s: %w", child, err)
		}
		shares = append(shares, unitShare{handle: child, token: rec.Token, amount: scaled})
	}
	return shares, nil
}

// OnReward settles one distribution event: this unit pays its scaled share of
// amount to recipient in its own token, then every registered child pays its
// own independently scaled share of the same amount in its token. Callable
// only by the ledger identity configured at creation; any other caller fails
// with ErrUnauthorizedCaller and nothing moves.
//
// The fan-out is strictly sequential in registry enumeration order. All
// payouts are handed to the bank as one batch, so a failure in any leg,
// including the parent's own, aborts the entire distribution with no token
// movement.
func (d *Distributor) OnReward(caller access.Identity, position, amount uint64, recipient access.Identity) error {
	var transfers []bank.Transfer
	err := d.store.db.View(func(tx *bbolt.Tx) error {
		self, err := loadUnit(tx, d.handle)
		if err != nil {
			return err
		}
		if caller != self.Ledger {
			return fmt.Errorf("%w: %s", ErrUnauthorizedCaller, caller)
		}

		shares, err := d.collectShares(tx, position, amount)
		if err != nil {
			return err
		}

		transfers = make([]bank.Transfer, len(shares))
		for i, sh := range shares {
			transfers[i] = bank.Transfer{
				Token:  sh.token,
				From:   sh.handle.Treasury(),
				To:     recipient,
				Amount: sh.amount,
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := d.bank.Pay(transfers); err != nil {
		return fmt.Errorf("distributor: settle: %w", err)
	}
	return nil
}
