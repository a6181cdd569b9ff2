package alias

import (
	"encoding/binary"
	"testing"

	"github.com/sirupsen/logrus"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func putU16(b []byte, off int, v uint16) { binary.BigEndian.PutUint16(b[off:off+2], v) }
func putU32(b []byte, off int, v uint32) { binary.BigEndian.PutUint32(b[off:off+4], v) }

func tlvEntry(id uint16, data []byte) []byte {
	out := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(out[0:2], id)
	binary.BigEndian.PutUint16(out[2:4], uint16(len(data)))
	copy(out[4:], data)
	if len(data)%2 != 0 {
		out = append(out, 0)
	}
	return out
}

func buildV2Body() []byte {
	b := make([]byte, 142)
	putU16(b, 0, 1) // is_directory = true
	// volume_name pascal string at b[3:30], length 0
	putU32(b, 30, 0) // volume_creation_date scalar
	copy(b[34:36], []byte("H+"))
	putU16(b, 36, 0) // disk_type = Fixed
	putU32(b, 38, 0xFFFFFFFF)
	putU32(b, 106, 0xFFFFFFFF)
	putU32(b, 110, 0) // creation_date scalar
	putU16(b, 122, 0xFFFF)
	putU16(b, 124, 0xFFFF)
	putU32(b, 126, 0) // volume_flags
	copy(b[130:132], []byte{0x00, 0x00})
	return b
}

func buildHeader(version uint16, bodyAndTLVLen int) []byte {
	h := make([]byte, headerSize)
	putU16(h, 4, uint16(8+bodyAndTLVLen))
	putU16(h, 6, version)
	return h
}

func TestParseAliasV2SentinelInodes(t *testing.T) {
	body := buildV2Body()
	blob := append(buildHeader(2, len(body)), body...)

	recs := Parse("test.alias", 7, blob, Limits{}, silentLogger())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.ParentInode != nil {
		t.Errorf("expected ParentInode nil, got %v", *rec.ParentInode)
	}
	if rec.TargetInode != nil {
		t.Errorf("expected TargetInode nil, got %v", *rec.TargetInode)
	}
	if !rec.IsDirectory {
		t.Errorf("expected IsDirectory true")
	}
	if rec.AliasToRootDepth != nil {
		t.Errorf("expected AliasToRootDepth nil")
	}
	if rec.RootToTargetDepth != nil {
		t.Errorf("expected RootToTargetDepth nil")
	}
	if rec.FilesystemDescription == nil || *rec.FilesystemDescription != "HFS+" {
		t.Errorf("expected filesystem description HFS+, got %v", rec.FilesystemDescription)
	}
	if rec.BookmarkIndex != 7 {
		t.Errorf("expected BookmarkIndex 7, got %d", rec.BookmarkIndex)
	}
}

func TestParseAliasV3PathJoin(t *testing.T) {
	body := make([]byte, 50)
	tlv := append(tlvEntry(0x13, []byte("/")), tlvEntry(0x12, []byte("Users/alice/Documents"))...)
	payload := append(body, tlv...)
	blob := append(buildHeader(3, len(payload)), payload...)

	recs := Parse("test.alias", 0, blob, Limits{}, silentLogger())
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	want := "/Users/alice/Documents"
	if rec.Path == nil || *rec.Path != want {
		t.Fatalf("got path %v, want %q", rec.Path, want)
	}
}

func TestParseAliasBadMagicVersion(t *testing.T) {
	blob := make([]byte, headerSize+10)
	putU16(blob, 6, 99)
	recs := Parse("bad.alias", 0, blob, Limits{}, silentLogger())
	if recs != nil {
		t.Fatalf("expected nil records for unsupported version, got %v", recs)
	}
}

func TestParseAliasEmptyBlob(t *testing.T) {
	recs := Parse("empty.alias", 0, nil, Limits{}, silentLogger())
	if recs != nil {
		t.Fatalf("expected nil records for empty blob, got %v", recs)
	}
}

func TestParseAliasRecursiveAliasData(t *testing.T) {
	innerBody := buildV2Body()
	innerBlob := append(buildHeader(2, len(innerBody)), innerBody...)

	outerBody := make([]byte, 50)
	tlv := tlvEntry(0x14, innerBlob)
	payload := append(outerBody, tlv...)
	blob := append(buildHeader(3, len(payload)), payload...)

	recs := Parse("outer.alias", 1, blob, Limits{}, silentLogger())
	if len(recs) != 2 {
		t.Fatalf("expected 2 records (outer + nested alias_data), got %d", len(recs))
	}
	if recs[1].BookmarkIndex != 1 {
		t.Errorf("expected nested record to carry the same bookmark_index, got %d", recs[1].BookmarkIndex)
	}
}
