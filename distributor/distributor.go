// Package distributor implements a parent reward distributor that fans a
// ledger-triggered distribution event out across a dynamically managed set of
// independently scaled child units, each paying its own fungible asset.
//
// One bbolt database holds an entire distributor tree: the root unit, every
// child unit, their role sets, child registries, and creation records. Every
// mutating operation runs inside a single update transaction, so a failed
// call never leaves partial state behind, and bbolt's single-writer model
// serializes all calls into the tree. Token movement is delegated to a
// bank.Bank, whose batch contract keeps multi-party payouts atomic.
//
// Mutations are gated by roles (see the access package): Admin manages role
// membership, RewardSetter changes multipliers, ChildSetter manages the child
// set. The distribution entry point OnReward is gated separately on the one
// ledger identity fixed at creation.
package distributor

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/fanoutorg/libfanout-go/access"
	"github.com/fanoutorg/libfanout-go/bank"
)

// Distributor is one unit of a distributor tree. The zero value is not
// usable; obtain instances from Open or (*Distributor).Child.
//
// A Distributor holds no mutable in-memory state and is safe for concurrent
// use by multiple goroutines.
type Distributor struct {
	store  *store
	bank   bank.Bank
	engine Engine
	handle Handle
}

// Open opens the distributor database at dbPath and returns its root unit.
//
// On a fresh database the root unit is bootstrapped from opts: it distributes
// opts.Token scaled by opts.Multiplier, accepts distribution events only from
// opts.Ledger, and opts.Admin becomes the sole Admin. On an existing database
// those fields are ignored and the persisted configuration wins.
func Open(dbPath string, opts Options) (*Distributor, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	engine := opts.Engine
	if engine == nil {
		engine = BasisEngine{}
	}

	s, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}

	var root Handle
	err = s.db.Update(func(tx *bbolt.Tx) error {
		if existing := tx.Bucket(bucketMeta).Get(metaRootKey); existing != nil {
			copy(root[:], existing)
			return nil
		}

		seq, err := tx.Bucket(bucketUnits).NextSequence()
		if err != nil {
			return fmt.Errorf("unit sequence: %w", err)
		}
		root = mintHandle(Handle{}, opts.Token, seq)

		rec := &unitRecord{Token: opts.Token, Multiplier: opts.Multiplier, Ledger: opts.Ledger}
		if err := saveUnit(tx, root, rec); err != nil {
			return err
		}
		if err := saveRoles(tx, root, access.NewRoleSet(opts.Admin)); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(metaRootKey, root[:])
	})
	if err != nil {
		_ = s.close()
		return nil, fmt.Errorf("distributor: bootstrap: %w", err)
	}

	return &Distributor{store: s, bank: opts.Bank, engine: engine, handle: root}, nil
}

// Close closes the underlying database. Children obtained from this unit
// share the database and become unusable as well.
func (d *Distributor) Close() error { return d.store.close() }

// Handle returns the unit's handle.
func (d *Distributor) Handle() Handle { return d.handle }

// DB exposes the underlying database for operational tooling such as
// encrypted snapshots. Callers must not mutate distributor buckets directly.
func (d *Distributor) DB() *bbolt.DB { return d.store.db }

// Treasury returns the bank account this unit pays rewards from.
func (d *Distributor) Treasury() access.Identity { return d.handle.Treasury() }

// mintHandle derives a fresh handle from the parent handle, the child token,
// and a store-scoped sequence number.
func mintHandle(parent Handle, token bank.TokenID, seq uint64) Handle {
	var seqBuf [8]byte
	binary.BigEndian.PutUint64(seqBuf[:], seq)

	h := sha256.New()
	h.Write(parent[:])
	h.Write(token[:])
	h.Write(seqBuf[:])

	var handle Handle
	copy(handle[:], h.Sum(nil))
	return handle
}

// RewardToken returns the asset this unit distributes.
func (d *Distributor) RewardToken() (bank.TokenID, error) {
	var token bank.TokenID
	err := d.store.db.View(func(tx *bbolt.Tx) error {
		rec, err := loadUnit(tx, d.handle)
		if err != nil {
			return err
		}
		token = rec.Token
		return nil
	})
	return token, err
}

// Multiplier returns the unit's current reward multiplier in basis points.
func (d *Distributor) Multiplier() (uint64, error) {
	var multiplier uint64
	err := d.store.db.View(func(tx *bbolt.Tx) error {
		rec, err := loadUnit(tx, d.handle)
		if err != nil {
			return err
		}
		multiplier = rec.Multiplier
		return nil
	})
	return multiplier, err
}

// SetMultiplier changes the unit's reward multiplier. Caller must hold
// RoleRewardSetter on this unit.
func (d *Distributor) SetMultiplier(caller access.Identity, value uint64) error {
	return d.store.db.Update(func(tx *bbolt.Tx) error {
		roles, err := loadRoles(tx, d.handle)
		if err != nil {
			return err
		}
		if err := roles.Require(access.RoleRewardSetter, caller); err != nil {
			return err
		}
		rec, err := loadUnit(tx, d.handle)
		if err != nil {
			return err
		}
		rec.Multiplier = value
		return saveUnit(tx, d.handle, rec)
	})
}

// GrantRole adds id to the membership of role on this unit. Caller must hold
// RoleAdmin on this unit.
func (d *Distributor) GrantRole(caller access.Identity, role access.Role, id access.Identity) error {
	return d.store.db.Update(func(tx *bbolt.Tx) error {
		roles, err := loadRoles(tx, d.handle)
		if err != nil {
			return err
		}
		if err := roles.Require(access.RoleAdmin, caller); err != nil {
			return err
		}
		if err := roles.Grant(role, id); err != nil {
			return err
		}
		return saveRoles(tx, d.handle, roles)
	})
}

// RevokeRole removes id from the membership of role on this unit. Caller must
// hold RoleAdmin on this unit. Revoking the last Admin fails with
// access.ErrLastAdmin.
func (d *Distributor) RevokeRole(caller access.Identity, role access.Role, id access.Identity) error {
	return d.store.db.Update(func(tx *bbolt.Tx) error {
		roles, err := loadRoles(tx, d.handle)
		if err != nil {
			return err
		}
		if err := roles.Require(access.RoleAdmin, caller); err != nil {
			return err
		}
		if err := roles.Revoke(role, id); err != nil {
			return err
		}
		return saveRoles(tx, d.handle, roles)
	})
}

// HasRole reports whether id holds role on this unit. Unrestricted read.
func (d *Distributor) HasRole(role access.Role, id access.Identity) (bool, error) {
	var held bool
	err := d.store.db.View(func(tx *bbolt.Tx) error {
		roles, err := loadRoles(tx, d.handle)
		if err != nil {
			return err
		}
		held = roles.Has(role, id)
		return nil
	})
	return held, err
}
