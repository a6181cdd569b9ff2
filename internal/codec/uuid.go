package codec

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDFromBytesBE interprets 16 bytes in Apple's big-endian field order.
func UUIDFromBytesBE(b []byte) (uuid.UUID, error) {
	if len(b) != 16 {
		return uuid.UUID{}, fmt.Errorf("uuid: need 16 bytes, got %d", len(b))
	}
	return uuid.FromBytes(b)
}

// UUIDFromBytesLE interprets 16 bytes in Microsoft/Windows field order: the
// first three fields (4, 2, 2 bytes) are byte-swapped relative to
// UUIDFromBytesBE; the trailing 8 bytes are unchanged.
func UUIDFromBytesLE(b []byte) (uuid.UUID, error) {
	if len(b) != 16 {
		return uuid.UUID{}, fmt.Errorf("uuid: need 16 bytes, got %d", len(b))
	}
	var be [16]byte
	be[0], be[1], be[2], be[3] = b[3], b[2], b[1], b[0]
	be[4], be[5] = b[5], b[4]
	be[6], be[7] = b[7], b[6]
	copy(be[8:], b[8:16])
	return uuid.FromBytes(be[:])
}
