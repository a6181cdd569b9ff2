package codec

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// DecodeHFSUniStr255 decodes a 16-bit big-endian character count followed by
// that many UTF-16BE code units — the HFSUniStr255 wire format used for
// target_filename and volume_name TLV fields.
func DecodeHFSUniStr255(b []byte) (string, error) {
	if len(b) < 2 {
		return "", fmt.Errorf("hfsunistr255: need at least 2 bytes, got %d", len(b))
	}
	count := int(binary.BigEndian.Uint16(b[0:2]))
	need := 2 + count*2
	if need > len(b) {
		return "", fmt.Errorf("hfsunistr255: declared length %d exceeds buffer of %d bytes", count, len(b))
	}
	units := make([]uint16, count)
	for i := 0; i < count; i++ {
		units[i] = binary.BigEndian.Uint16(b[2+i*2 : 4+i*2])
	}
	return string(utf16.Decode(units)), nil
}
