package distributor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Registry format: count(4, big-endian) || handle(32)*count.
//
// Removal swaps the last entry into the vacated slot, so enumeration order is
// NOT stable across removals. Callers may rely on set membership and length
// only, never on positions.
const (
	registryHeaderSize = 4
	registryEntrySize  = HandleSize
)

// serializeRegistry encodes a handle list to binary format.
func serializeRegistry(handles []Handle) ([]byte, error) {
	if len(handles) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d entries", ErrInvalidRegistryData, len(handles))
	}
	buf := make([]byte, registryHeaderSize+registryEntrySize*len(handles))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(handles)))
	offset := registryHeaderSize
	for _, h := range handles {
		copy(buf[offset:offset+registryEntrySize], h[:])
		offset += registryEntrySize
	}
	return buf, nil
}

// deserializeRegistry decodes binary data into a handle list. Nil data is an
// empty registry.
func deserializeRegistry(data []byte) ([]Handle, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < registryHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidRegistryData, len(data))
	}
	count := int(binary.BigEndian.Uint32(data[0:4]))
	if len(data) != registryHeaderSize+registryEntrySize*count {
		return nil, fmt.Errorf("%w: expected %d entries in %d bytes",
			ErrInvalidRegistryData, count, len(data))
	}
	handles := make([]Handle, count)
	offset := registryHeaderSize
	for i := range handles {
		copy(handles[i][:], data[offset:offset+registryEntrySize])
		offset += registryEntrySize
	}
	return handles, nil
}

// indexOfHandle returns the position of h, or -1 if absent.
func indexOfHandle(handles []Handle, h Handle) int {
	for i := range handles {
		if handles[i] == h {
			return i
		}
	}
	return -1
}

// removeHandleAt swap-removes the entry at index i.
func removeHandleAt(handles []Handle, i int) []Handle {
	handles[i] = handles[len(handles)-1]
	return handles[:len(handles)-1]
}
