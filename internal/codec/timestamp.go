package codec

import (
	"encoding/binary"
	"math"
	"time"
)

// HFSEpoch is the origin of classic HFS timestamps: 1904-01-01 00:00:00 UTC.
var HFSEpoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

// MacAbsoluteEpoch is the origin of "Mac absolute time" timestamps used by
// Cocoa (NSDate, CFAbsoluteTime) and the bookmark format: 2001-01-01 UTC.
var MacAbsoluteEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseTimestamp is the shared conversion every timestamp field routes
// through: raw/resolution gives seconds since epoch, quantized to
// microseconds with round-half-to-even (Go has no decimal type, so this
// reproduces banker's rounding by hand rather than truncating or rounding
// away from zero). A raw value of exactly zero means "no timestamp".
func ParseTimestamp(raw float64, resolution float64, epoch time.Time) *time.Time {
	if raw == 0 {
		return nil
	}
	seconds := raw / resolution
	micros := roundHalfEven(seconds * 1e6)
	t := epoch.Add(time.Duration(micros) * time.Microsecond)
	return &t
}

func roundHalfEven(x float64) int64 {
	floor := math.Floor(x)
	frac := x - floor
	switch {
	case frac < 0.5:
		return int64(floor)
	case frac > 0.5:
		return int64(floor) + 1
	default:
		if math.Mod(floor, 2) == 0 {
			return int64(floor)
		}
		return int64(floor) + 1
	}
}

// ParseHFSScalar decodes the 4-byte big-endian HFS second count used by
// Alias v2's volume_creation_date/creation_date fields.
func ParseHFSScalar(seconds uint32) *time.Time {
	return ParseTimestamp(float64(seconds), 1, HFSEpoch)
}

// ParseHFSCompound decodes the 8-byte compound HFS timestamp (high:u16,
// low:u32, fraction:u16, all big-endian) used by Alias v3's body and by the
// named-field TLV entries 0x10/0x11 in both versions.
func ParseHFSCompound(b []byte) *time.Time {
	if len(b) != 8 {
		return nil
	}
	high := binary.BigEndian.Uint16(b[0:2])
	low := binary.BigEndian.Uint32(b[2:6])
	fraction := binary.BigEndian.Uint16(b[6:8])
	raw := (uint64(high)<<32|uint64(low))*65535 + uint64(fraction)
	return ParseTimestamp(float64(raw), 65535, HFSEpoch)
}

// ParseMacAbsoluteTime converts a seconds-since-2001 value, already decoded
// to a float64 by the caller, into a UTC timestamp.
func ParseMacAbsoluteTime(seconds float64) *time.Time {
	return ParseTimestamp(seconds, 1, MacAbsoluteEpoch)
}

// ParseMacAbsoluteTimeBytesBE decodes an 8-byte big-endian IEEE-754 double
// of seconds since 2001, the wire form bookmark DATE-class values use.
func ParseMacAbsoluteTimeBytesBE(b []byte) *time.Time {
	if len(b) != 8 {
		return nil
	}
	bits := binary.BigEndian.Uint64(b)
	return ParseMacAbsoluteTime(math.Float64frombits(bits))
}
