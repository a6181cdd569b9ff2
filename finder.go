package plistutils

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pkg/xattr"
	times "gopkg.in/djherbis/times.v1"
)

// finderInfoAttr is the extended attribute macOS stores a file's 32-byte
// FInfo/FXInfo pair under.
const finderInfoAttr = "com.apple.FinderInfo"

// finderFlagIsAlias is the kIsAlias bit of FinderFlags, a big-endian uint16
// at offset 8 of the FinderInfo attribute.
const finderFlagIsAlias = 0x8000

// IsFinderAlias reports whether the Finder "is alias" bit is set on path's
// com.apple.FinderInfo attribute, grounded in the pack's
// darwin.GetAttrList/FFKIsAlias check, reimplemented against the portable
// pkg/xattr API with a raw unix.Getxattr fallback on darwin.
func IsFinderAlias(path string) (bool, error) {
	data, err := xattr.Get(path, finderInfoAttr)
	if err != nil {
		data, err = getxattrFallback(path, finderInfoAttr)
		if err != nil {
			return false, err
		}
	}
	if len(data) < 10 {
		return false, fmt.Errorf("driver: short FinderInfo attribute on %q: got %d bytes", path, len(data))
	}
	flags := binary.BigEndian.Uint16(data[8:10])
	return flags&finderFlagIsAlias != 0, nil
}

// BirthTime reports path's filesystem birth time, when the platform and
// filesystem expose one, for comparison against a decoded creation_date.
func BirthTime(path string) (time.Time, bool) {
	t, err := times.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	if !t.HasBirthTime() {
		return time.Time{}, false
	}
	return t.BirthTime(), true
}
