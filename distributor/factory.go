package distributor

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/fanoutorg/libfanout-go/access"
	"github.com/fanoutorg/libfanout-go/bank"
)

// CreateChild constructs a new independent child unit paying token scaled by
// multiplier, bound to the same ledger as this unit, and registers its handle
// for fan-out. Caller must hold RoleChildSetter on this unit.
//
// Administrative ownership of the child is handed to controller: controller
// becomes the child's sole Admin, and this unit keeps no role on the child —
// only the registry relation. A creation record is appended for
// observability. The whole operation is one atomic transaction.
func (d *Distributor) CreateChild(caller access.Identity, token bank.TokenID, multiplier uint64, controller access.Identity) (Handle, error) {
	var child Handle
	err := d.store.db.Update(func(tx *bbolt.Tx) error {
		roles, err := loadRoles(tx, d.handle)
		if err != nil {
			return err
		}
		if err := roles.Require(access.RoleChildSetter, caller); err != nil {
			return err
		}

		parent, err := loadUnit(tx, d.handle)
		if err != nil {
			return err
		}

		seq, err := tx.Bucket(bucketUnits).NextSequence()
		if err != nil {
			return fmt.Errorf("unit sequence: %w", err)
		}
		child = mintHandle(d.handle, token, seq)

		registry, err := loadRegistry(tx, d.handle)
		if err != nil {
			return err
		}
		// Handles are freshly minted, so a hit here means store corruption.
		if indexOfHandle(registry, child) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateChild, child)
		}

		rec := &unitRecord{Token: token, Multiplier: multiplier, Ledger: parent.Ledger}
		if err := saveUnit(tx, child, rec); err != nil {
			return err
		}
		if err := saveRoles(tx, child, access.NewRoleSet(controller)); err != nil {
			return err
		}
		if err := saveRegistry(tx, d.handle, append(registry, child)); err != nil {
			return err
		}

		return putCreation(tx, d.handle, CreationRecord{
			Seq:        seq,
			Handle:     child,
			Token:      token,
			Controller: controller,
		})
	})
	if err != nil {
		return Handle{}, err
	}
	return child, nil
}

// RemoveChild detaches handle from this unit's fan-out registry. Caller must
// hold RoleChildSetter on this unit. Fails with ErrUnknownChild if the handle
// is not registered, leaving the registry unchanged.
//
// The child itself is not destroyed or paused: its unit record, roles, and
// funds survive, and it remains independently callable via Child.
func (d *Distributor) RemoveChild(caller access.Identity, handle Handle) error {
	return d.store.db.Update(func(tx *bbolt.Tx) error {
		roles, err := loadRoles(tx, d.handle)
		if err != nil {
			return err
		}
		if err := roles.Require(access.RoleChildSetter, caller); err != nil {
			return err
		}

		registry, err := loadRegistry(tx, d.handle)
		if err != nil {
			return err
		}
		i := indexOfHandle(registry, handle)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownChild, handle)
		}
		return saveRegistry(tx, d.handle, removeHandleAt(registry, i))
	})
}

// Children returns a snapshot of the current registry. Unrestricted read.
//
// Enumeration order is not stable across removals. Cost is linear in registry
// size; this is a diagnostic capability and is never called from mutating
// code paths.
func (d *Distributor) Children() ([]Handle, error) {
	var handles []Handle
	err := d.store.db.View(func(tx *bbolt.Tx) error {
		var err error
		handles, err = loadRegistry(tx, d.handle)
		return err
	})
	if err != nil {
		return nil, err
	}
	return handles, nil
}

// Child opens the unit identified by handle over the shared database. The
// unit need not be registered with this parent: a removed child stays
// reachable here. Fails with ErrUnknownUnit if no such unit exists.
func (d *Distributor) Child(handle Handle) (*Distributor, error) {
	err := d.store.db.View(func(tx *bbolt.Tx) error {
		_, err := loadUnit(tx, handle)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Distributor{store: d.store, bank: d.bank, engine: d.engine, handle: handle}, nil
}

// creationKey encodes (parent, seq) as a composite key for prefix scanning.
func creationKey(parent Handle, seq uint64) []byte {
	k := make([]byte, HandleSize+8)
	copy(k, parent[:])
	binary.BigEndian.PutUint64(k[HandleSize:], seq)
	return k
}

func putCreation(tx *bbolt.Tx, parent Handle, rec CreationRecord) error {
	data, err := encodeGob(&rec)
	if err != nil {
		return fmt.Errorf("distributor: encode creation record: %w", err)
	}
	return tx.Bucket(bucketCreations).Put(creationKey(parent, rec.Seq), data)
}

// Creations returns this unit's child creation records in creation order.
// Unrestricted read. Records survive child removal.
func (d *Distributor) Creations() ([]CreationRecord, error) {
	var records []CreationRecord
	err := d.store.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketCreations).Cursor()
		for k, v := c.Seek(d.handle[:]); k != nil && bytes.HasPrefix(k, d.handle[:]); k, v = c.Next() {
			var rec CreationRecord
			if err := decodeGob(v, &rec); err != nil {
				return fmt.Errorf("distributor: decode creation record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
