package distributor

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/fanoutorg/libfanout-go/access"
)

var (
	bucketUnits      = []byte("units")
	bucketRoles      = []byte("roles")
	bucketRegistries = []byte("registries")
	bucketCreations  = []byte("creations")
	bucketMeta       = []byte("meta")
)

var metaRootKey = []byte("root")

// store wraps the bbolt database holding every unit of one distributor tree.
//
// bbolt serializes update transactions and gives view transactions a
// consistent snapshot, so every operation runs to completion atomically
// relative to every other operation on the same database.
type store struct {
	db *bbolt.DB
}

// openStore opens or creates the distributor database at dbPath.
// The parent directory is created if it does not exist.
func openStore(dbPath string) (*store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("distributor: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("distributor: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUnits, bucketRoles, bucketRegistries, bucketCreations, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("distributor: create buckets: %w", err)
	}

	return &store{db: db}, nil
}

func (s *store) close() error { return s.db.Close() }

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func loadUnit(tx *bbolt.Tx, h Handle) (*unitRecord, error) {
	data := tx.Bucket(bucketUnits).Get(h[:])
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnit, h)
	}
	var rec unitRecord
	if err := decodeGob(data, &rec); err != nil {
		return nil, fmt.Errorf("distributor: decode unit %s: %w", h, err)
	}
	return &rec, nil
}

func saveUnit(tx *bbolt.Tx, h Handle, rec *unitRecord) error {
	data, err := encodeGob(rec)
	if err != nil {
		return fmt.Errorf("distributor: encode unit %s: %w", h, err)
	}
	return tx.Bucket(bucketUnits).Put(h[:], data)
}

func loadRoles(tx *bbolt.Tx, h Handle) (*access.RoleSet, error) {
	data := tx.Bucket(bucketRoles).Get(h[:])
	if data == nil {
		return nil, fmt.Errorf("%w: no roles for %s", ErrUnknownUnit, h)
	}
	set, err := access.DeserializeRoleSet(data)
	if err != nil {
		return nil, fmt.Errorf("distributor: decode roles %s: %w", h, err)
	}
	return set, nil
}

func saveRoles(tx *bbolt.Tx, h Handle, set *access.RoleSet) error {
	data, err := set.Serialize()
	if err != nil {
		return fmt.Errorf("distributor: encode roles %s: %w", h, err)
	}
	return tx.Bucket(bucketRoles).Put(h[:], data)
}

// loadRegistry returns the unit's child registry; absent means empty.
func loadRegistry(tx *bbolt.Tx, h Handle) ([]Handle, error) {
	handles, err := deserializeRegistry(tx.Bucket(bucketRegistries).Get(h[:]))
	if err != nil {
		return nil, fmt.Errorf("distributor: registry of %s: %w", h, err)
	}
	return handles, nil
}

func saveRegistry(tx *bbolt.Tx, h Handle, handles []Handle) error {
	data, err := serializeRegistry(handles)
	if err != nil {
		return fmt.Errorf("distributor: encode registry of %s: %w", h, err)
	}
	return tx.Bucket(bucketRegistries).Put(h[:], data)
}
