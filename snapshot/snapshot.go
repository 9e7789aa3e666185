// Package snapshot implements passphrase-encrypted backups of a distributor
// database.
//
// A snapshot is a full image of every bucket in a bbolt database, gob-encoded
// and sealed with Argon2id + AES-256-GCM. Snapshots are an operational
// convenience for backup and migration; they carry no logic of their own and
// restoring one reproduces the exact durable state it was taken from.
package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"go.etcd.io/bbolt"
)

// image is the gob form of a database: bucket name -> key -> value, plus
// each bucket's sequence counter, which lives in bucket metadata rather than
// in any key.
type image struct {
	Buckets   map[string]map[string][]byte
	Sequences map[string]uint64
}

// Export captures every bucket of db into an encrypted snapshot.
//
// The capture runs inside a single view transaction, so the snapshot is a
// consistent point-in-time image even while other calls are in flight.
func Export(db *bbolt.DB, passphrase string) ([]byte, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: database", ErrNilParam)
	}

	img := image{
		Buckets:   make(map[string]map[string][]byte),
		Sequences: make(map[string]uint64),
	}
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			keys := make(map[string][]byte)
			err := b.ForEach(func(k, v []byte) error {
				if v == nil {
					// Nested buckets are not used by the distributor store.
					return fmt.Errorf("%w: nested bucket in %q", ErrInvalidSnapshot, name)
				}
				vc := make([]byte, len(v))
				copy(vc, v)
				keys[string(k)] = vc
				return nil
			})
			if err != nil {
				return err
			}
			img.Buckets[string(name)] = keys
			img.Sequences[string(name)] = b.Sequence()
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: export: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&img); err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return seal(buf.Bytes(), passphrase)
}

// Restore decrypts a snapshot and writes its contents into db. Existing
// buckets named in the snapshot are replaced wholesale; buckets absent from
// the snapshot are left alone.
func Restore(db *bbolt.DB, data []byte, passphrase string) error {
	if db == nil {
		return fmt.Errorf("%w: database", ErrNilParam)
	}

	plaintext, err := open(data, passphrase)
	if err != nil {
		return err
	}

	var img image
	if err := gob.NewDecoder(bytes.NewReader(plaintext)).Decode(&img); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrInvalidSnapshot, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for name, keys := range img.Buckets {
			if tx.Bucket([]byte(name)) != nil {
				if err := tx.DeleteBucket([]byte(name)); err != nil {
					return fmt.Errorf("drop bucket %q: %w", name, err)
				}
			}
			b, err := tx.CreateBucket([]byte(name))
			if err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
			if err := b.SetSequence(img.Sequences[name]); err != nil {
				return fmt.Errorf("restore sequence of %q: %w", name, err)
			}
			for k, v := range keys {
				if err := b.Put([]byte(k), v); err != nil {
					return fmt.Errorf("put into %q: %w", name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("snapshot: restore: %w", err)
	}
	return nil
}
