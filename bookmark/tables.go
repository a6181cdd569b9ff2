package bookmark

import "github.com/strozfriedberg/plistutils/internal/codec"

// resourcePropertyFlags decodes the 0x1010 field's little-endian u64
// bitmask.
var resourcePropertyFlags = []codec.FlagBit{
	{Bit: 0x1, Name: "IsRegularFile"},
	{Bit: 0x2, Name: "IsDirectory"},
	{Bit: 0x4, Name: "IsSymbolicLink"},
	{Bit: 0x8, Name: "IsVolume"},
	{Bit: 0x10, Name: "IsPackage"},
	{Bit: 0x20, Name: "IsSystemImmutable"},
	{Bit: 0x40, Name: "IsUserImmutable"},
	{Bit: 0x80, Name: "IsHidden"},
	{Bit: 0x100, Name: "HasHiddenExtension"},
	{Bit: 0x200, Name: "IsApplication"},
	{Bit: 0x400, Name: "IsCompressed"},
	{Bit: 0x800, Name: "CanSetHiddenExtension"},
	{Bit: 0x1000, Name: "IsReadable"},
	{Bit: 0x2000, Name: "IsWriteable"},
	{Bit: 0x4000, Name: "IsExecutable"},
	{Bit: 0x8000, Name: "IsAliasFile"},
	{Bit: 0x10000, Name: "IsMountTrigger"},
}

// volumePropertyFlags decodes the 0x2020 field's little-endian u64
// bitmask. Reproduced verbatim from spec.md §6, the "full set required for
// interop".
var volumePropertyFlags = []codec.FlagBit{
	{Bit: 0x1, Name: "IsLocal"},
	{Bit: 0x2, Name: "IsAutomount"},
	{Bit: 0x4, Name: "DontBrowse"},
	{Bit: 0x8, Name: "IsReadOnly"},
	{Bit: 0x10, Name: "IsQuarantined"},
	{Bit: 0x20, Name: "IsEjectable"},
	{Bit: 0x40, Name: "IsRemovable"},
	{Bit: 0x80, Name: "IsInternal"},
	{Bit: 0x100, Name: "IsExternal"},
	{Bit: 0x200, Name: "IsDiskImage"},
	{Bit: 0x400, Name: "IsFileVault"},
	{Bit: 0x800, Name: "IsLocaliDiskMirror"},
	{Bit: 0x1000, Name: "IsiPod"},
	{Bit: 0x2000, Name: "IsiDisk"},
	{Bit: 0x4000, Name: "IsCD"},
	{Bit: 0x8000, Name: "IsDVD"},
	{Bit: 0x10000, Name: "IsDeviceFileSystem"},
	{Bit: 0x100000000, Name: "SupportsPersistentIDs"},
	{Bit: 0x200000000, Name: "SupportsSearchFS"},
	{Bit: 0x400000000, Name: "SupportsExchange"},
	{Bit: 0x1000000000, Name: "SupportsSymbolicLinks"},
	{Bit: 0x2000000000, Name: "SupportsDenyModes"},
	{Bit: 0x4000000000, Name: "SupportsCopyFile"},
	{Bit: 0x8000000000, Name: "SupportsReadDirAttr"},
	{Bit: 0x10000000000, Name: "SupportsJournaling"},
	{Bit: 0x20000000000, Name: "SupportsRename"},
	{Bit: 0x40000000000, Name: "SupportsFastStatFS"},
	{Bit: 0x80000000000, Name: "SupportsCaseSensitiveNames"},
	{Bit: 0x100000000000, Name: "SupportsCasePreservedNames"},
	{Bit: 0x200000000000, Name: "SupportsFLock"},
	{Bit: 0x400000000000, Name: "HasNoRootDirectoryTimes"},
	{Bit: 0x800000000000, Name: "SupportsExtendedSecurity"},
	{Bit: 0x1000000000000, Name: "Supports2TBFileSize"},
	{Bit: 0x2000000000000, Name: "SupportsHardLinks"},
	{Bit: 0x4000000000000, Name: "SupportsMandatoryByteRangeLocks"},
	{Bit: 0x8000000000000, Name: "SupportsPathFromID"},
	{Bit: 0x20000000000000, Name: "IsJournaling"},
	{Bit: 0x40000000000000, Name: "SupportsSparseFiles"},
	{Bit: 0x80000000000000, Name: "SupportsZeroRuns"},
	{Bit: 0x100000000000000, Name: "SupportsVolumeSizes"},
	{Bit: 0x200000000000000, Name: "SupportsRemoteEvents"},
	{Bit: 0x400000000000000, Name: "SupportsHiddenFiles"},
	{Bit: 0x800000000000000, Name: "SupportsDecmpFSCompression"},
	{Bit: 0x1000000000000000, Name: "Has64BitObjectIDs"},
}
