package bank

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/fanoutorg/libfanout-go/access"
)

var bucketBalances = []byte("balances")

// BoltBank is a bbolt-backed Bank. A batch handed to Pay is applied inside a
// single update transaction, so a failure on any transfer rolls the whole
// batch back.
type BoltBank struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Bank = (*BoltBank)(nil)

// OpenBoltBank opens or creates the bank database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltBank(dbPath string) (*BoltBank, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("bank: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("bank: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBalances)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bank: create buckets: %w", err)
	}

	return &BoltBank{db: db}, nil
}

// Close closes the underlying database.
func (b *BoltBank) Close() error { return b.db.Close() }

// balanceKey encodes (token, identity) as a composite key.
func balanceKey(token TokenID, id access.Identity) []byte {
	k := make([]byte, TokenIDSize+access.IdentitySize)
	copy(k, token[:])
	copy(k[TokenIDSize:], id[:])
	return k
}

func getBalance(bkt *bbolt.Bucket, token TokenID, id access.Identity) uint64 {
	v := bkt.Get(balanceKey(token, id))
	if len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func putBalance(bkt *bbolt.Bucket, token TokenID, id access.Identity, amount uint64) error {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, amount)
	return bkt.Put(balanceKey(token, id), v)
}

// Deposit credits amount of token to id, creating the account if needed.
func (b *BoltBank) Deposit(token TokenID, id access.Identity, amount uint64) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketBalances)
		cur := getBalance(bkt, token, id)
		if cur > math.MaxUint64-amount {
			return fmt.Errorf("%w: %s", ErrBalanceOverflow, token)
		}
		return putBalance(bkt, token, id, cur+amount)
	})
}

// Pay applies the batch of transfers inside one update transaction. On any
// failure the transaction is rolled back and no balance changes.
func (b *BoltBank) Pay(transfers []Transfer) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketBalances)
		for i, tr := range transfers {
			from := getBalance(bkt, tr.Token, tr.From)
			if from < tr.Amount {
				return fmt.Errorf("%w: transfer %d needs %d of %s, have %d",
					ErrInsufficientFunds, i, tr.Amount, tr.Token, from)
			}
			if tr.From == tr.To {
				continue
			}
			to := getBalance(bkt, tr.Token, tr.To)
			if to > math.MaxUint64-tr.Amount {
				return fmt.Errorf("%w: transfer %d", ErrBalanceOverflow, i)
			}
			if err := putBalance(bkt, tr.Token, tr.From, from-tr.Amount); err != nil {
				return fmt.Errorf("bank: debit: %w", err)
			}
			if err := putBalance(bkt, tr.Token, tr.To, to+tr.Amount); err != nil {
				return fmt.Errorf("bank: credit: %w", err)
			}
		}
		return nil
	})
}

// Balance returns the balance of id in token.
func (b *BoltBank) Balance(token TokenID, id access.Identity) (uint64, error) {
	var amount uint64
	err := b.db.View(func(tx *bbolt.Tx) error {
		amount = getBalance(tx.Bucket(bucketBalances), token, id)
		return nil
	})
	return amount, err
}
