package bookmark

import (
	"encoding/binary"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/strozfriedberg/plistutils/internal/codec"
)

const (
	headerSize  = 16 // 4s magic + 3 x u32 (size, version, data_offset)
	tocHdrSize  = 20 // u32 data_length + u16 record_type + u16 flags + u32 depth + u32 next_toc + u32 count
	tocEntrySz  = 12 // u32 record_type + u32 record_offset + u32 flags
	recHdrSize  = 8  // u32 record_length + u32 record_data_type
	classMask   = 0xFFFFFF00
	classString = 0x100
	classBytes  = 0x200
	classNumber = 0x300
	classDate   = 0x400
	classBool   = 0x500
	classArray  = 0x600
	classUUID   = 0x800
	classURL    = 0x900
	classNull   = 0xA00
)

// tocEntry is one (record_type, record_offset, flags) row from a TOC block,
// annotated with the depth and visit index of the TOC it came from.
type tocEntry struct {
	recordType   uint32
	recordOffset uint32
	flags        uint32
	depth        uint32
	tocIndex     int
}

// Parse decodes blob as a bookmark, returning one Record per table-of-contents
// level visited while following next_toc. pathHint and itemName are used
// only in log messages; index is threaded into every returned Record as
// BookmarkIndex.
func Parse(pathHint string, index int, itemName string, blob []byte, limits Limits, log codec.Logger) []Record {
	log = codec.OrDefault(log)
	if len(blob) < headerSize {
		return nil
	}
	magic := blob[0:4]
	if string(magic) != "book" && string(magic) != "alis" {
		log.Errorf("bookmark: %v", newBadMagicError(magic))
		return nil
	}
	dataOffset := binary.LittleEndian.Uint32(blob[8:12])

	entries, tocCount, ok := walkTOC(blob, dataOffset, limits, pathHint, log)
	if !ok {
		return nil
	}

	records := make([]Record, tocCount)
	seen := make([]map[string]bool, tocCount)
	depthSet := make([]bool, tocCount)
	for i := range records {
		records[i].BookmarkIndex = index
		seen[i] = make(map[string]bool)
	}

	for _, e := range entries {
		rec := &records[e.tocIndex]
		if !depthSet[e.tocIndex] {
			rec.TOCDepth = e.depth
			depthSet[e.tocIndex] = true
		}
		processField(blob, dataOffset, e, rec, seen[e.tocIndex], limits, pathHint, itemName, log)
	}
	return records
}

// walkTOC follows the next_toc chain starting at data_offset, collecting
// every entry from every TOC visited. A visited-offset set and an iteration
// cap protect against a cyclic chain.
func walkTOC(blob []byte, dataOffset uint32, limits Limits, pathHint string, log codec.Logger) ([]tocEntry, int, bool) {
	if int(dataOffset)+4 > len(blob) {
		log.Errorf("bookmark: data_offset %d out of range in %q", dataOffset, pathHint)
		return nil, 0, false
	}
	tocOffset := binary.LittleEndian.Uint32(blob[dataOffset : dataOffset+4])

	var entries []tocEntry
	visited := map[uint32]bool{}
	tocIndex := 0
	maxTOCs := limits.tocCap()
	for tocOffset != 0 {
		if tocIndex >= maxTOCs {
			log.Errorf("bookmark: exceeded TOC visit cap (%d) in %q, returning partial result", maxTOCs, pathHint)
			break
		}
		absOffset := dataOffset + tocOffset
		if visited[absOffset] {
			log.Errorf("bookmark: cyclic table of contents detected at offset %d in %q, stopping", absOffset, pathHint)
			break
		}
		visited[absOffset] = true

		block, next, ok := parseTOCBlock(blob, absOffset, dataOffset, tocIndex, pathHint, log)
		if !ok {
			break
		}
		entries = append(entries, block...)
		tocOffset = next
		tocIndex++
	}
	return entries, tocIndex, true
}

func parseTOCBlock(blob []byte, offset, dataOffset uint32, tocIndex int, pathHint string, log codec.Logger) ([]tocEntry, uint32, bool) {
	if int(offset)+tocHdrSize > len(blob) {
		log.Errorf("bookmark: %v", newTruncatedError("table of contents header", int(offset), tocHdrSize))
		return nil, 0, false
	}
	// data_length:u32, record_type:u16, flags:u16, depth:u32, next_toc:u32, count:u32
	depth := binary.LittleEndian.Uint32(blob[offset+8 : offset+12])
	nextTOC := binary.LittleEndian.Uint32(blob[offset+12 : offset+16])
	count := binary.LittleEndian.Uint32(blob[offset+16 : offset+20])

	entries := make([]tocEntry, 0, count)
	base := offset + tocHdrSize
	for i := uint32(0); i < count; i++ {
		entryOff := base + i*tocEntrySz
		if int(entryOff)+tocEntrySz > len(blob) {
			log.Errorf("bookmark: %v", newTruncatedError("table of contents entry", int(entryOff), tocEntrySz))
			break
		}
		recType := binary.LittleEndian.Uint32(blob[entryOff : entryOff+4])
		recOffset := binary.LittleEndian.Uint32(blob[entryOff+4 : entryOff+8])
		flags := binary.LittleEndian.Uint32(blob[entryOff+8 : entryOff+12])
		entries = append(entries, tocEntry{
			recordType:   recType,
			recordOffset: recOffset + dataOffset,
			flags:        flags,
			depth:        depth,
			tocIndex:     tocIndex,
		})
	}
	return entries, nextTOC, true
}

// fieldSpec declares the general data-type classes accepted for a field and
// the name it is stored under. A blank name means the field is recognized
// but intentionally not surfaced.
type fieldSpec struct {
	allowed []uint32
	name    string
}

var fieldTable = map[uint32]fieldSpec{
	0x1004: {[]uint32{classArray}, "path"},
	0x1005: {[]uint32{classArray}, "inode_path"},
	0x1010: {[]uint32{classBytes}, "resource_props"},
	0x1020: {[]uint32{classString, classURL}, "target_filename"},
	0x1030: {[]uint32{classNumber}, "target_inode"},
	0x1040: {[]uint32{classDate}, "creation_date"},
	0x2000: {[]uint32{classArray}, "volume_info_depths"},
	0x2002: {[]uint32{classString, classURL}, "volume_path"},
	0x2005: {[]uint32{classString, classURL}, "volume_url"},
	0x2010: {[]uint32{classString}, "volume_name"},
	0x2011: {[]uint32{classString, classUUID}, "volume_uuid"},
	0x2012: {[]uint32{classNumber}, "volume_size"},
	0x2013: {[]uint32{classDate}, "volume_creation_date"},
	0x2020: {[]uint32{classBytes}, "volume_props"},
	0x2030: {[]uint32{classBool}, "volume_was_boot"},
	0x2040: {[]uint32{classNumber}, "disk_image_depth"},
	0x2050: {[]uint32{classString, classURL}, "volume_mount_point"},
	0xc001: {[]uint32{classNumber}, ""},
	0xc011: {[]uint32{classString}, "user_name"},
	0xc012: {[]uint32{classNumber}, "user_uid"},
	0xd001: {[]uint32{classBool}, ""},
	0xd010: {[]uint32{classNumber}, ""},
	0xe003: {[]uint32{classArray}, ""},
	0xf017: {[]uint32{classString}, "display_name"},
	0xf021: {[]uint32{classBytes}, ""},
	0xf030: {[]uint32{classNumber}, "bookmark_creation_time"},
	0xf080: {[]uint32{classBytes}, "sandbox_rw_extension"},
	0xf081: {[]uint32{classBytes}, "sandbox_ro_extension"},
	// Unlike the other recognized-only IDs, 0xfe00 is surfaced under a name
	// so the driver can chain its bytes into the alias decoder.
	0xfe00:     {[]uint32{classBytes}, "alias_data"},
	0x800001ac: {[]uint32{classNumber}, ""},
	0x800001d8: {[]uint32{classNumber}, ""},
}

func processField(blob []byte, dataOffset uint32, e tocEntry, rec *Record, seen map[string]bool, limits Limits, pathHint, itemName string, log codec.Logger) {
	spec, known := fieldTable[e.recordType]
	if !known {
		log.Warnf("bookmark: unknown record type %#x in item %q from %q, please report", e.recordType, itemName, pathHint)
		return
	}
	if spec.name == "" {
		return
	}
	if int(e.recordOffset)+recHdrSize > len(blob) {
		log.Debugf("bookmark: record header for field %q truncated in %q", spec.name, pathHint)
		return
	}
	recordLength := binary.LittleEndian.Uint32(blob[e.recordOffset : e.recordOffset+4])
	dataType := binary.LittleEndian.Uint32(blob[e.recordOffset+4 : e.recordOffset+8])
	dataStart := e.recordOffset + recHdrSize
	if int(dataStart)+int(recordLength) > len(blob) {
		log.Debugf("bookmark: payload for field %q truncated in %q", spec.name, pathHint)
		return
	}
	data := blob[dataStart : dataStart+recordLength]

	class := dataType & classMask
	if !classAllowed(class, spec.allowed) && class != classNull {
		log.Errorf("bookmark: unexpected data type %#x for record type %#x (%s) in %q, please report", dataType, e.recordType, spec.name, pathHint)
		return
	}

	value := parseRecordData(blob, dataOffset, dataType, recordLength, data, 0, limits, pathHint, log)
	storeField(spec.name, value, rec, seen, pathHint, log)
}

func classAllowed(class uint32, allowed []uint32) bool {
	for _, c := range allowed {
		if c == class {
			return true
		}
	}
	return false
}

// parseRecordData decodes the raw payload according to its exact (class |
// subtype) data_type tag, recursing into ARRAY elements up to
// limits.arrayDepthCap().
func parseRecordData(blob []byte, dataOffset uint32, dataType uint32, length uint32, data []byte, depth int, limits Limits, pathHint string, log codec.Logger) any {
	switch dataType {
	case 0x101:
		return decodeUTF8(data)
	case 0x201:
		return append([]byte(nil), data...)
	case 0x301:
		if len(data) >= 1 {
			return int64(int8(data[0]))
		}
	case 0x302:
		if len(data) >= 2 {
			return int64(int16(binary.LittleEndian.Uint16(data)))
		}
	case 0x303:
		if len(data) >= 4 {
			return int64(int32(binary.LittleEndian.Uint32(data)))
		}
	case 0x304:
		if len(data) >= 8 {
			return int64(binary.LittleEndian.Uint64(data))
		}
	case 0x305, 0x30C:
		if len(data) >= 4 {
			return float64(decodeFloat32LE(data))
		}
	case 0x306, 0x30D:
		if len(data) >= 8 {
			return decodeFloat64LE(data)
		}
	case 0x307:
		if len(data) >= 1 {
			return uint64(data[0])
		}
	case 0x308:
		if len(data) >= 2 {
			return uint64(binary.LittleEndian.Uint16(data))
		}
	case 0x309, 0x30A, 0x30E, 0x30F:
		if len(data) >= 4 {
			return uint64(binary.LittleEndian.Uint32(data))
		}
	case 0x30B:
		if len(data) >= 8 {
			return binary.LittleEndian.Uint64(data)
		}
	case 0x400:
		return codec.ParseMacAbsoluteTimeBytesBE(data)
	case 0x500:
		return false
	case 0x501:
		return true
	case 0x601:
		return decodePointerArray(blob, dataOffset, data, depth, limits, pathHint, log)
	case 0x801:
		u, err := codec.UUIDFromBytesBE(data)
		if err != nil {
			log.Debugf("bookmark: could not decode UUID field in %q: %v", pathHint, err)
			return nil
		}
		return u.String()
	case 0x901:
		return decodeUTF8(data)
	case 0x902:
		return decodeURLArray(blob, dataOffset, data, depth, limits, pathHint, log)
	case 0xA01:
		if length != 0 {
			log.Warnf("bookmark: unexpected data length %d for null-type field in %q, please report", length, pathHint)
		}
		return nil
	}
	return append([]byte(nil), data...)
}

func decodeUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return fmt.Sprintf("%x", raw)
}

func decodeFloat32LE(b []byte) float32 {
	bits := binary.LittleEndian.Uint32(b)
	return math.Float32frombits(bits)
}

func decodeFloat64LE(b []byte) float64 {
	bits := binary.LittleEndian.Uint64(b)
	return math.Float64frombits(bits)
}

func decodePointerArray(blob []byte, dataOffset uint32, data []byte, depth int, limits Limits, pathHint string, log codec.Logger) []any {
	if depth >= limits.arrayDepthCap() {
		log.Errorf("bookmark: array recursion depth exceeded in %q, returning partial result", pathHint)
		return nil
	}
	count := len(data) / 4
	out := make([]any, 0, count)
	for i := 0; i < count; i++ {
		ptr := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		compOffset := ptr + dataOffset
		if int(compOffset)+recHdrSize > len(blob) {
			log.Debugf("bookmark: array element at index %d truncated in %q", i, pathHint)
			continue
		}
		compLength := binary.LittleEndian.Uint32(blob[compOffset : compOffset+4])
		compType := binary.LittleEndian.Uint32(blob[compOffset+4 : compOffset+8])
		compDataStart := compOffset + recHdrSize
		if int(compDataStart)+int(compLength) > len(blob) {
			log.Debugf("bookmark: array element at index %d payload truncated in %q", i, pathHint)
			continue
		}
		compData := blob[compDataStart : compDataStart+compLength]
		out = append(out, parseRecordData(blob, dataOffset, compType, compLength, compData, depth+1, limits, pathHint, log))
	}
	return out
}

func decodeURLArray(blob []byte, dataOffset uint32, data []byte, depth int, limits Limits, pathHint string, log codec.Logger) string {
	parts := decodePointerArray(blob, dataOffset, data, depth, limits, pathHint, log)
	if len(parts) == 2 {
		base, _ := parts[0].(string)
		rel, _ := parts[1].(string)
		return joinRelativeURL(base, rel)
	}
	strs := make([]string, 0, len(parts))
	for _, p := range parts {
		if s, ok := p.(string); ok {
			strs = append(strs, s)
		}
	}
	joined := strings.Join(strs, "/")
	log.Warnf("bookmark: unexpected record count %d in URL array (expected 2): %q, please report", len(parts), joined)
	return joined
}

func joinRelativeURL(base, rel string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return base + rel
	}
	relURL, err := url.Parse(rel)
	if err != nil {
		return base + rel
	}
	return baseURL.ResolveReference(relURL).String()
}

func storeField(name string, value any, rec *Record, seen map[string]bool, pathHint string, log codec.Logger) {
	claim := func(key string) bool {
		if seen[key] {
			log.Errorf("bookmark: duplicate key %q in %q, keeping first value", key, pathHint)
			return false
		}
		seen[key] = true
		return true
	}

	switch name {
	case "path":
		if !claim(name) {
			return
		}
		rec.Path = joinPathArray(value)
	case "inode_path":
		if !claim(name) {
			return
		}
		rec.InodePath = joinPathArray(value)
	case "resource_props":
		if !claim(name) {
			return
		}
		rec.ResourceProps = decodeFlagBytes(value, resourcePropertyFlags)
	case "target_filename":
		if !claim(name) {
			return
		}
		rec.TargetFilename = asStringPtr(value)
	case "target_inode":
		if !claim(name) {
			return
		}
		rec.TargetInode = asUint64Ptr(value)
	case "creation_date":
		if !claim(name) {
			return
		}
		rec.CreationDate = asTimePtr(value)
	case "volume_path":
		if !claim(name) {
			return
		}
		rec.VolumePath = asStringPtr(value)
	case "volume_url":
		if !claim(name) {
			return
		}
		rec.VolumeURL = asStringPtr(value)
	case "volume_name":
		if !claim(name) {
			return
		}
		rec.VolumeName = asStringPtr(value)
	case "volume_uuid":
		if !claim(name) {
			return
		}
		rec.VolumeUUID = asStringPtr(value)
	case "volume_size":
		if !claim(name) {
			return
		}
		rec.VolumeSize = asUint64Ptr(value)
	case "volume_creation_date":
		if !claim(name) {
			return
		}
		rec.VolumeCreationDate = asTimePtr(value)
	case "volume_props":
		if !claim(name) {
			return
		}
		rec.VolumeProps = decodeFlagBytes(value, volumePropertyFlags)
	case "volume_mount_point":
		if !claim(name) {
			return
		}
		rec.VolumeMountPoint = asStringPtr(value)
	case "volume_info_depths":
		if !claim(name) {
			return
		}
		rec.VolumeInfoDepths = joinDepthsArray(value)
	case "volume_was_boot":
		if !claim(name) {
			return
		}
		rec.VolumeWasBoot = asBoolPtr(value)
	case "disk_image_depth":
		if !claim(name) {
			return
		}
		rec.DiskImageDepth = asUint64Ptr(value)
	case "user_name":
		if !claim(name) {
			return
		}
		rec.UserName = asStringPtr(value)
	case "user_uid":
		if !claim(name) {
			return
		}
		rec.UserUID = asUint64Ptr(value)
	case "display_name":
		if !claim(name) {
			return
		}
		rec.DisplayName = asStringPtr(value)
	case "bookmark_creation_time":
		if !claim(name) {
			return
		}
		rec.BookmarkCreationTime = asBookmarkTimePtr(value)
	case "alias_data":
		if !claim(name) {
			return
		}
		if b, ok := value.([]byte); ok {
			rec.AliasData = b
		}
	case "sandbox_rw_extension", "sandbox_ro_extension":
		uuid, path := decodeSandboxExtension(value)
		if uuid != nil && claim("sandbox_uuid") {
			rec.SandboxUUID = uuid
		}
		if path != nil && claim("sandbox_path") {
			rec.SandboxPath = path
		}
	}
}

// joinPathArray renders an ARRAY-class value as a leading-slash, slash-joined
// path, dropping empty/zero components the way the wire format's own
// join_path helper does.
func joinPathArray(value any) *string {
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	var parts []string
	for _, v := range arr {
		s := stringifyComponent(v)
		if s != "" {
			parts = append(parts, s)
		}
	}
	joined := "/" + strings.Join(parts, "/")
	return &joined
}

// joinDepthsArray renders an ARRAY-class value as a comma-space-joined list,
// matching the original's `', '.join(str(y) for y in x)` decoder for
// volume_info_depths verbatim (unlike joinPathArray, zero values are kept).
func joinDepthsArray(value any) *string {
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	parts := make([]string, len(arr))
	for i, v := range arr {
		parts[i] = stringifyAny(v)
	}
	joined := strings.Join(parts, ", ")
	return &joined
}

func stringifyAny(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func stringifyComponent(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		if t == 0 {
			return ""
		}
		return strconv.FormatInt(t, 10)
	case uint64:
		if t == 0 {
			return ""
		}
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func decodeFlagBytes(value any, table []codec.FlagBit) *string {
	b, ok := value.([]byte)
	if !ok || len(b) < 8 {
		return nil
	}
	mask := binary.LittleEndian.Uint64(b[:8])
	return codec.InterpretFlags(mask, table)
}

func decodeSandboxExtension(value any) (*string, *string) {
	b, ok := value.([]byte)
	if !ok {
		return nil, nil
	}
	parts := strings.Split(string(b), ";")
	if len(parts) == 0 {
		return nil, nil
	}
	uuid := parts[0]
	last := strings.TrimRight(parts[len(parts)-1], "\x00")
	return &uuid, &last
}

func asStringPtr(value any) *string {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	return &s
}

func asUint64Ptr(value any) *uint64 {
	switch v := value.(type) {
	case uint64:
		return &v
	case int64:
		u := uint64(v)
		return &u
	case float64:
		u := uint64(v)
		return &u
	}
	return nil
}

func asBoolPtr(value any) *bool {
	b, ok := value.(bool)
	if !ok {
		return nil
	}
	return &b
}

func asTimePtr(value any) *time.Time {
	t, ok := value.(*time.Time)
	if !ok {
		return nil
	}
	return t
}

func asBookmarkTimePtr(value any) *time.Time {
	switch v := value.(type) {
	case float64:
		return codec.ParseMacAbsoluteTime(v)
	case int64:
		return codec.ParseMacAbsoluteTime(float64(v))
	case uint64:
		return codec.ParseMacAbsoluteTime(float64(v))
	}
	return nil
}
