package plistutils

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/strozfriedberg/plistutils/alias"
	"github.com/strozfriedberg/plistutils/bookmark"
	"github.com/strozfriedberg/plistutils/internal/codec"
	"github.com/strozfriedberg/plistutils/keyedarchive"
	"github.com/strozfriedberg/plistutils/plist"
)

// BlobKind is the shape DetectBlobKind found in a raw blob.
type BlobKind int

const (
	KindUnknown BlobKind = iota
	KindAlias
	KindBookmark
)

// DetectBlobKind inspects a blob's first bytes to decide which decoder owns
// it. Bookmark records carry a literal "book" or "alis" ASCII magic;
// classic Alias records have none, so a zeroed app_info field followed by a
// known version number (2 or 3) is the only signal available.
func DetectBlobKind(blob []byte) BlobKind {
	if len(blob) >= 4 {
		magic := blob[0:4]
		if bytes.Equal(magic, []byte("book")) || bytes.Equal(magic, []byte("alis")) {
			return KindBookmark
		}
	}
	if len(blob) >= 8 {
		appInfo := blob[0:4]
		version := binary.BigEndian.Uint16(blob[6:8])
		if bytes.Equal(appInfo, []byte{0, 0, 0, 0}) && (version == 2 || version == 3) {
			return KindAlias
		}
	}
	return KindUnknown
}

// Limits bounds the work DecodeBlob does chaining through nested blobs, on
// top of each decoder's own internal limits.
type Limits struct {
	Alias        alias.Limits
	Bookmark     bookmark.Limits
	Keyedarchive keyedarchive.Limits

	// MaxChainDepth caps how many times DecodeBlob will re-enter itself for
	// a blob a decoder yielded (a bookmark's 0xfe00 alias_data, most
	// commonly). Zero means the package default of 8.
	MaxChainDepth int
}

const defaultMaxChainDepth = 8

func (l Limits) chainDepthCap() int {
	if l.MaxChainDepth <= 0 {
		return defaultMaxChainDepth
	}
	return l.MaxChainDepth
}

// DecodedResult holds every record DecodeBlob produced, across however many
// chained blobs it followed.
type DecodedResult struct {
	AliasRecords    []alias.Record
	BookmarkRecords []bookmark.Record
}

// DecodeBlob detects blob's shape and runs the matching decoder, re-entering
// itself for any embedded blob the decoder hands back (currently: a
// bookmark record's 0xfe00 alias_data field). pathHint and itemName are
// carried through unchanged; index is threaded into every returned record.
func DecodeBlob(pathHint string, index int, itemName string, blob []byte, limits Limits, log codec.Logger) DecodedResult {
	return decodeBlobAtDepth(pathHint, index, itemName, blob, limits, codec.OrDefault(log), 0)
}

func decodeBlobAtDepth(pathHint string, index int, itemName string, blob []byte, limits Limits, log codec.Logger, depth int) DecodedResult {
	var result DecodedResult
	if depth > limits.chainDepthCap() {
		log.Errorf("driver: exceeded chained-blob depth %d while decoding %q", limits.chainDepthCap(), pathHint)
		return result
	}

	switch DetectBlobKind(blob) {
	case KindBookmark:
		recs := bookmark.Parse(pathHint, index, itemName, blob, limits.Bookmark, log)
		result.BookmarkRecords = recs
		for _, r := range recs {
			if len(r.AliasData) == 0 {
				continue
			}
			chained := decodeBlobAtDepth(pathHint, index, itemName, r.AliasData, limits, log, depth+1)
			result.AliasRecords = append(result.AliasRecords, chained.AliasRecords...)
			result.BookmarkRecords = append(result.BookmarkRecords, chained.BookmarkRecords...)
		}
	case KindAlias:
		result.AliasRecords = alias.Parse(pathHint, index, blob, limits.Alias, log)
	default:
		log.Warnf("driver: unrecognized blob shape for %q, first bytes %s", pathHint, hex.EncodeToString(firstBytes(blob)))
	}
	return result
}

// DecodeArchive resolves a pre-parsed NSKeyedArchiver tree, then walks the
// result looking for raw byte strings that are themselves a Bookmark or
// Alias blob (most commonly an SFLListItem's "bookmark" field) and chains
// them through DecodeBlob, the same way decodeBlobAtDepth chains a
// bookmark's 0xfe00 alias_data into the alias decoder. Kept here, rather
// than in keyedarchive, so that package doesn't need to import bookmark/alias
// itself.
func DecodeArchive(tree plist.Dict, limits Limits, log codec.Logger) plist.Dict {
	resolved := keyedarchive.Parse(tree, limits.Keyedarchive, log)
	if resolved == nil {
		return nil
	}
	chained, _ := chainArchiveBlobs(resolved, limits, log, 0).(plist.Dict)
	return chained
}

// chainArchiveBlobs recurses through a resolved keyed-archive value, handing
// every []byte that DetectBlobKind recognizes off to decodeBlobAtDepth and
// substituting the decoded result in its place.
func chainArchiveBlobs(v any, limits Limits, log codec.Logger, depth int) any {
	if depth > limits.chainDepthCap() {
		log.Errorf("driver: exceeded chained-blob depth %d while walking keyed archive", limits.chainDepthCap())
		return v
	}
	switch t := v.(type) {
	case plist.Dict:
		out := make(plist.Dict, len(t))
		for k, val := range t {
			if b, ok := val.([]byte); ok && DetectBlobKind(b) != KindUnknown {
				out[k] = decodeBlobAtDepth("keyedarchive", 0, k, b, limits, log, depth+1)
				continue
			}
			out[k] = chainArchiveBlobs(val, limits, log, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = chainArchiveBlobs(e, limits, log, depth+1)
		}
		return out
	case []byte:
		if DetectBlobKind(t) != KindUnknown {
			return decodeBlobAtDepth("keyedarchive", 0, "", t, limits, log, depth+1)
		}
		return v
	default:
		return v
	}
}

func firstBytes(b []byte) []byte {
	if len(b) > 8 {
		return b[:8]
	}
	return b
}
