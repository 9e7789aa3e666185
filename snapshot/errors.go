package snapshot

import "errors"

var (
	// ErrInvalidSnapshot indicates the snapshot data is malformed.
	ErrInvalidSnapshot = errors.New("snapshot: invalid snapshot data")

	// ErrDecryptFailed indicates decryption failed (wrong passphrase or
	// tampered data).
	ErrDecryptFailed = errors.New("snapshot: decryption failed")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("snapshot: nil parameter")
)
