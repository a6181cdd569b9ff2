package alias

import "github.com/strozfriedberg/plistutils/internal/codec"

// signatureFSID maps the 4-byte combined signature+filesystem-id tag to a
// human-readable filesystem name. getattrlist and statfs both report this
// tag as a 32-bit value on 64-bit systems.
var signatureFSID = map[string]string{
	"BDcu":     "UDF (CD/DVD)",
	"BDIS":     "FAT32",
	"BDxF":     "exFAT",
	"HX\x00\x00": "HFSX",
	"H+\x00\x00": "HFS+",
	"KG\x00\x00": "FTP",
	"NTcu":     "NTFS",
}

// diskTypes are known-good for Alias v2. They are not reliable for v3 (the
// same codes there seem to map to something else), so v3 records never set
// DiskTypeDescription.
var diskTypes = map[uint16]string{
	0: "Fixed",
	1: "Network",
	2: "400KB Floppy",
	3: "800KB Floppy",
	4: "1.44MB Floppy",
	5: "Ejectable",
}

var aliasFlags = []codec.FlagBit{
	{Bit: 0x0002, Name: "IsEjectable"},
	{Bit: 0x0020, Name: "IsBootVolume"},
	{Bit: 0x0080, Name: "IsAutomounted"},
	{Bit: 0x0100, Name: "HasPersistentFileIds"},
}
