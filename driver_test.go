package plistutils

import (
	"encoding/binary"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/strozfriedberg/plistutils/plist"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestDetectBlobKind(t *testing.T) {
	cases := []struct {
		name string
		blob []byte
		want BlobKind
	}{
		{"bookmark book magic", []byte("book" + "\x00\x00\x00\x00\x00\x00\x00\x00"), KindBookmark},
		{"bookmark alis magic", []byte("alis" + "\x00\x00\x00\x00\x00\x00\x00\x00"), KindBookmark},
		{"alias v2 header", aliasHeader(2), KindAlias},
		{"alias v3 header", aliasHeader(3), KindAlias},
		{"garbage", []byte("\xff\xff\xff\xff\x00\x00\x00\x09"), KindUnknown},
		{"too short", []byte{0, 0}, KindUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DetectBlobKind(c.blob); got != c.want {
				t.Errorf("DetectBlobKind(%q) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func aliasHeader(version uint16) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint16(b[4:6], 8)
	binary.BigEndian.PutUint16(b[6:8], version)
	return b
}

// buildMinimalV3Alias assembles the smallest valid v3 Alias record: an
// 8-byte header followed by the 50-byte fixed body, no TLV fields.
func buildMinimalV3Alias() []byte {
	blob := make([]byte, 8+50)
	binary.BigEndian.PutUint16(blob[4:6], uint16(len(blob)))
	binary.BigEndian.PutUint16(blob[6:8], 3)
	return blob
}

// buildMinimalBookmark assembles a single-TOC bookmark blob with one field:
// record_type 0xfe00, class BYTES, payload aliasBlob. Layout mirrors
// bookmark.Parse's documented header/TOC/pool shapes.
func buildMinimalBookmark(aliasBlob []byte) []byte {
	const (
		headerSize = 16
		tocHdrSize = 20
		tocEntrySz = 12
	)
	dataOffset := uint32(16)
	tocRelOffset := uint32(4)
	tocAbs := dataOffset + tocRelOffset
	tocEntriesStart := tocAbs + tocHdrSize
	poolStart := tocEntriesStart + tocEntrySz

	blob := make([]byte, poolStart)
	copy(blob[0:4], []byte("book"))
	binary.LittleEndian.PutUint32(blob[4:8], uint32(len(blob)))
	binary.LittleEndian.PutUint32(blob[8:12], 1)
	binary.LittleEndian.PutUint32(blob[12:16], dataOffset)
	binary.LittleEndian.PutUint32(blob[dataOffset:dataOffset+4], tocRelOffset)

	binary.LittleEndian.PutUint32(blob[tocAbs:tocAbs+4], 0)
	binary.LittleEndian.PutUint16(blob[tocAbs+4:tocAbs+6], 0)
	binary.LittleEndian.PutUint16(blob[tocAbs+6:tocAbs+8], 0)
	binary.LittleEndian.PutUint32(blob[tocAbs+8:tocAbs+12], 0)
	binary.LittleEndian.PutUint32(blob[tocAbs+12:tocAbs+16], 0)
	binary.LittleEndian.PutUint32(blob[tocAbs+16:tocAbs+20], 1)

	rec := make([]byte, 8+len(aliasBlob))
	binary.LittleEndian.PutUint32(rec[0:4], uint32(len(aliasBlob)))
	binary.LittleEndian.PutUint32(rec[4:8], 0x201)
	copy(rec[8:], aliasBlob)

	entryOff := tocEntriesStart
	binary.LittleEndian.PutUint32(blob[entryOff:entryOff+4], 0xfe00)
	binary.LittleEndian.PutUint32(blob[entryOff+4:entryOff+8], poolStart-dataOffset)
	binary.LittleEndian.PutUint32(blob[entryOff+8:entryOff+12], 0)

	return append(blob, rec...)
}

func TestDecodeBlobChainsBookmarkIntoAlias(t *testing.T) {
	blob := buildMinimalBookmark(buildMinimalV3Alias())

	result := DecodeBlob("test.bookmark", 0, "item", blob, Limits{}, silentLogger())
	if len(result.BookmarkRecords) != 1 {
		t.Fatalf("expected 1 bookmark record, got %d", len(result.BookmarkRecords))
	}
	if len(result.AliasRecords) != 1 {
		t.Fatalf("expected the chained alias_data to decode to 1 alias record, got %d", len(result.AliasRecords))
	}
}

func TestDecodeArchiveChainsSFLListItemBookmark(t *testing.T) {
	bookmarkBlob := buildMinimalBookmark(buildMinimalV3Alias())
	objects := []any{
		nil,
		plist.Dict{
			"$class":   plist.UID(2),
			"bookmark": bookmarkBlob,
		},
		plist.Dict{"$classname": "SFLListItem"},
	}
	tree := plist.Dict{
		"$archiver": "NSKeyedArchiver",
		"$version":  int64(100000),
		"$top":      plist.Dict{"root": plist.UID(1)},
		"$objects":  objects,
	}

	got := DecodeArchive(tree, Limits{}, silentLogger())
	root, ok := got["root"].(plist.Dict)
	if !ok {
		t.Fatalf("got root %#v, want plist.Dict", got["root"])
	}
	decoded, ok := root["bookmark"].(DecodedResult)
	if !ok {
		t.Fatalf("got bookmark field %#v, want DecodedResult", root["bookmark"])
	}
	if len(decoded.BookmarkRecords) != 1 {
		t.Fatalf("expected 1 bookmark record, got %d", len(decoded.BookmarkRecords))
	}
	if len(decoded.AliasRecords) != 1 {
		t.Fatalf("expected the chained alias_data to decode to 1 alias record, got %d", len(decoded.AliasRecords))
	}
}

func TestDecodeBlobUnknownShape(t *testing.T) {
	result := DecodeBlob("garbage", 0, "item", []byte("not a known format"), Limits{}, silentLogger())
	if len(result.AliasRecords) != 0 || len(result.BookmarkRecords) != 0 {
		t.Fatalf("expected no records for an unrecognized blob, got %+v", result)
	}
}
