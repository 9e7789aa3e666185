package distributor

import (
	"go.etcd.io/bbolt"

	"github.com/fanoutorg/libfanout-go/bank"
)

// PendingTokens reports what a distribution event of amount would pay,
// without settling anything. Unrestricted pure read.
//
// The two returned sequences are aligned and have length 1 + |registry|:
// index 0 is this unit's own token and pending amount, indices 1..N follow
// the registry's current enumeration order. An empty registry yields
// length-1 sequences.
func (d *Distributor) PendingTokens(position, amount uint64) ([]bank.TokenID, []uint64, error) {
	var shares []unitShare
	err := d.store.db.View(func(tx *bbolt.Tx) error {
		var err error
		shares, err = d.collectShares(tx, position, amount)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	tokens := make([]bank.TokenID, len(shares))
	amounts := make([]uint64, len(shares))
	for i, sh := range shares {
		tokens[i] = sh.token
		amounts[i] = sh.amount
	}
	return tokens, amounts, nil
}
