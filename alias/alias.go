package alias

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/strozfriedberg/plistutils/internal/codec"
)

// headerSize is 4 bytes app_info + 2 bytes record_length + 2 bytes version.
const headerSize = 8

// Parse decodes blob as an Alias record, returning the decoded Record and,
// if the blob's alias_data TLV field held a nested alias blob, every Record
// that blob decodes to as well. pathHint is used only in log messages;
// index is threaded into every returned Record as BookmarkIndex.
func Parse(pathHint string, index int, blob []byte, limits Limits, log codec.Logger) []Record {
	return parseDepth(pathHint, index, blob, limits, codec.OrDefault(log), 0)
}

func parseDepth(pathHint string, index int, blob []byte, limits Limits, log codec.Logger, depth int) []Record {
	if depth > limits.depthCap() {
		log.Errorf("alias: recursion depth exceeded while parsing %q, returning partial result", pathHint)
		return nil
	}
	if len(blob) < headerSize {
		return nil
	}

	appInfo := blob[0:4]
	recordLength := binary.BigEndian.Uint16(blob[4:6])
	version := binary.BigEndian.Uint16(blob[6:8])

	if !bytes.Equal(appInfo, []byte{0, 0, 0, 0}) {
		log.Warnf("alias: unexpected app_info %x in %q, please report", appInfo, pathHint)
	}
	if int(recordLength) != len(blob) {
		log.Warnf("alias: unexpected size in %q: expected %d bytes, got %d bytes", pathHint, recordLength, len(blob))
	}
	if version != 2 && version != 3 {
		log.Errorf("%v, please report", newUnsupportedVersionError(version, pathHint))
		return nil
	}

	rec, aliasData, ok := parseVersion(pathHint, index, blob, headerSize, version, limits, log)
	if !ok {
		return nil
	}
	out := []Record{rec}
	if len(aliasData) > 0 {
		out = append(out, parseDepth(pathHint, index, aliasData, limits, log, depth+1)...)
	}
	return out
}

// bodyFields holds the values read directly out of the version-specific
// fixed-layout body, before the named-field (TLV) list can override some of
// them.
type bodyFields struct {
	isDirectory        bool
	volumeName         *string
	targetFilename     *string
	diskType           *uint16
	parentInode        uint32
	targetInode        uint32
	application        *string
	targetType         *string
	aliasToRootDepth   *uint16
	rootToTargetDepth  *uint16
	volumeFlags        uint32
	signatureFSIDBytes []byte
	volumeCreationDate *time.Time // set directly for v3 (8-byte compound body field)
	creationDate       *time.Time // set directly for v3
	volCreationScalar  uint32     // set for v2 (4-byte HFS-seconds body field)
	creationScalar     uint32     // set for v2
}

// namedFieldAccum holds the values the TLV list can set or override.
type namedFieldAccum struct {
	folderName, cnidPath, hfsPath, driverName *string
	targetFilename, volumeName                *string
	volumeCreationDate, creationDate          *time.Time
	path, volumeMountPoint                    *string
	aliasData                                 []byte
}

func parseVersion(pathHint string, index int, buf []byte, offset int, version uint16, limits Limits, log codec.Logger) (Record, []byte, bool) {
	var bodySize int
	if version == 2 {
		bodySize = 142
	} else {
		bodySize = 50
	}
	if offset+bodySize > len(buf) {
		log.Debugf("alias: could not decode alias data in %q: body truncated", pathHint)
		return Record{}, nil, false
	}
	body := buf[offset : offset+bodySize]

	var bf bodyFields
	if version == 2 {
		bf = parseV2Body(body)
	} else {
		bf = parseV3Body(body)
	}

	acc := namedFieldAccum{
		targetFilename:     bf.targetFilename,
		volumeName:         bf.volumeName,
		volumeCreationDate: bf.volumeCreationDate,
		creationDate:       bf.creationDate,
	}

	cur := offset + bodySize
	iterations := 0
	maxIter := limits.tlvCap()
	for cur < len(buf) && iterations < maxIter {
		if cur+4 > len(buf) {
			break
		}
		fieldID := binary.BigEndian.Uint16(buf[cur : cur+2])
		length := int(binary.BigEndian.Uint16(buf[cur+2 : cur+4]))
		cur += 4
		if fieldID == 0xFFFF {
			break
		}
		if length > 0 {
			end := cur + length
			if end > len(buf) {
				log.Debugf("alias: TLV field %#x in %q truncated, skipping", fieldID, pathHint)
				cur = len(buf)
				break
			}
			applyField(fieldID, buf[cur:end], &acc, pathHint, log)
			cur = end + (length % 2)
		}
		iterations++
	}
	if iterations >= maxIter {
		log.Errorf("alias: exceeded TLV iteration cap (%d) while parsing %q, returning partial result", maxIter, pathHint)
	}

	if version == 2 {
		if acc.volumeCreationDate == nil {
			acc.volumeCreationDate = codec.ParseHFSScalar(bf.volCreationScalar)
		}
		if acc.creationDate == nil {
			acc.creationDate = codec.ParseHFSScalar(bf.creationScalar)
		}
	}

	rec := Record{
		IsDirectory:        bf.isDirectory,
		VolumeName:         acc.volumeName,
		TargetFilename:     acc.targetFilename,
		ParentInode:        sentinelUint32(bf.parentInode, 0xFFFFFFFF),
		TargetInode:        sentinelUint32(bf.targetInode, 0xFFFFFFFF),
		CreationDate:       acc.creationDate,
		VolumeCreationDate: acc.volumeCreationDate,
		DiskType:           bf.diskType,
		AliasToRootDepth:   sentinelUint16Ptr(bf.aliasToRootDepth),
		RootToTargetDepth:  sentinelUint16Ptr(bf.rootToTargetDepth),
		Application:        bf.application,
		TargetType:         bf.targetType,
		FolderName:         acc.folderName,
		CNIDPath:           acc.cnidPath,
		HFSPath:            acc.hfsPath,
		DriverName:         acc.driverName,
		Path:               joinPathMount(acc.volumeMountPoint, acc.path),
		VolumeMountPoint:   acc.volumeMountPoint,
		BookmarkIndex:      index,
	}

	rec.VolumeFlags = codec.InterpretFlags(uint64(bf.volumeFlags), aliasFlags)

	fsid := decodeUTF8(bf.signatureFSIDBytes)
	rec.SignatureFSID = &fsid
	desc, ok := signatureFSID[string(bf.signatureFSIDBytes)]
	if !ok {
		desc = "Unknown"
	}
	rec.FilesystemDescription = &desc

	if bf.diskType != nil {
		dtDesc, known := diskTypes[*bf.diskType]
		if !known {
			dtDesc = "Unknown"
		}
		rec.DiskTypeDescription = &dtDesc
	}

	return rec, acc.aliasData, true
}

func parseV2Body(b []byte) bodyFields {
	var bf bodyFields
	bf.isDirectory = binary.BigEndian.Uint16(b[0:2]) != 0
	// b[2] is the volume-name-length byte, already encoded as the pascal
	// string's own first byte in b[3:30]; it is not read separately.
	bf.volumeName = decodePascalString(b[3:30])
	bf.volCreationScalar = binary.BigEndian.Uint32(b[30:34])
	signature := append([]byte(nil), b[34:36]...)
	diskType := binary.BigEndian.Uint16(b[36:38])
	bf.diskType = &diskType
	bf.parentInode = binary.BigEndian.Uint32(b[38:42])
	// b[42] is the filename-length byte, unused the same way.
	bf.targetFilename = decodeNullTrimmedUTF8(b[43:106])
	bf.targetInode = binary.BigEndian.Uint32(b[106:110])
	bf.creationScalar = binary.BigEndian.Uint32(b[110:114])
	application := decodeASCIIUpperFallback(b[114:118])
	bf.application = &application
	targetType := decodeASCIIUpperFallback(b[118:122])
	bf.targetType = &targetType
	aliasToRoot := binary.BigEndian.Uint16(b[122:124])
	bf.aliasToRootDepth = &aliasToRoot
	rootToTarget := binary.BigEndian.Uint16(b[124:126])
	bf.rootToTargetDepth = &rootToTarget
	bf.volumeFlags = binary.BigEndian.Uint32(b[126:130])
	filesystemID := append([]byte(nil), b[130:132]...)
	bf.signatureFSIDBytes = append(signature, filesystemID...)
	return bf
}

func parseV3Body(b []byte) bodyFields {
	var bf bodyFields
	bf.isDirectory = binary.BigEndian.Uint16(b[0:2]) != 0
	bf.volumeCreationDate = codec.ParseHFSCompound(b[2:10])
	bf.signatureFSIDBytes = append([]byte(nil), b[10:14]...)
	bf.parentInode = binary.BigEndian.Uint32(b[16:20])
	bf.targetInode = binary.BigEndian.Uint32(b[20:24])
	bf.creationDate = codec.ParseHFSCompound(b[24:32])
	bf.volumeFlags = binary.BigEndian.Uint32(b[32:36])
	return bf
}

func applyField(fieldID uint16, payload []byte, acc *namedFieldAccum, pathHint string, log codec.Logger) {
	switch fieldID {
	case 0x00:
		s := decodeUTF8(payload)
		acc.folderName = &s
	case 0x01:
		acc.cnidPath = decodeCNIDPath(payload, pathHint, log)
	case 0x02:
		s := decodeUTF8(payload)
		acc.hfsPath = &s
	case 0x06:
		s := decodeUTF8(payload)
		acc.driverName = &s
	case 0x0E:
		s, err := codec.DecodeHFSUniStr255(payload)
		if err != nil {
			log.Debugf("alias: could not decode field 'target_filename' in %q: %v", pathHint, err)
			return
		}
		acc.targetFilename = &s
	case 0x0F:
		s, err := codec.DecodeHFSUniStr255(payload)
		if err != nil {
			log.Debugf("alias: could not decode field 'volume_name' in %q: %v", pathHint, err)
			return
		}
		acc.volumeName = &s
	case 0x10:
		acc.volumeCreationDate = codec.ParseHFSCompound(payload)
	case 0x11:
		acc.creationDate = codec.ParseHFSCompound(payload)
	case 0x12:
		s := decodeUTF8(payload)
		acc.path = &s
	case 0x13:
		s := decodeUTF8(payload)
		acc.volumeMountPoint = &s
	case 0x14:
		acc.aliasData = append([]byte(nil), payload...)
	case 0x03, 0x04, 0x05, 0x09, 0x0A, 0x15:
		// appleshare_zone/server/username, network_mount_info, dialup_info,
		// user_home_prefix_length: recognized but intentionally not surfaced.
	default:
		log.Warnf("alias: unexpected field tag %#x in alias data for %q, please report", fieldID, pathHint)
	}
}

func decodeUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return strings.ReplaceAll(string(raw), "\x00", "")
	}
	return hex.EncodeToString(raw)
}

func decodeNullTrimmedUTF8(raw []byte) *string {
	s := decodeUTF8(raw)
	return &s
}

func decodeASCIIUpperFallback(raw []byte) string {
	for _, c := range raw {
		if c >= 0x80 {
			return strings.ToUpper(hex.EncodeToString(raw))
		}
	}
	return string(raw)
}

func decodePascalString(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	l := int(b[0])
	if l > len(b)-1 {
		l = len(b) - 1
	}
	s := decodeUTF8(b[1 : 1+l])
	return &s
}

func decodeCNIDPath(raw []byte, pathHint string, log codec.Logger) *string {
	if len(raw)%4 != 0 {
		log.Warnf("alias: unable to parse CNIDs from alias data in %q: expected a multiple of 4 bytes, got %d, please report", pathHint, len(raw))
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	parts := make([]string, 0, len(raw)/4)
	for i := 0; i < len(raw); i += 4 {
		parts = append(parts, strconv.FormatUint(uint64(binary.BigEndian.Uint32(raw[i:i+4])), 10))
	}
	s := strings.Join(parts, "/")
	return &s
}

func joinPathMount(mount, path *string) *string {
	if mount == nil || *mount == "" {
		return path
	}
	m := *mount
	p := ""
	if path != nil {
		p = *path
	}
	if !strings.HasSuffix(m, "/") && p != "" {
		m += "/"
	}
	joined := m + p
	return &joined
}

func sentinelUint32(v, sentinel uint32) *uint32 {
	if v == sentinel {
		return nil
	}
	return &v
}

func sentinelUint16Ptr(p *uint16) *uint16 {
	if p == nil || *p == 0xFFFF {
		return nil
	}
	return p
}
