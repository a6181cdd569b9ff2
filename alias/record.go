package alias

import "time"

// Record is the decoded form of one Alias blob. Fields that the format
// defines as nullable (sentinel-valued on the wire) are pointers; a nil
// pointer means the field is absent or was the sentinel, never the zero
// value of the underlying type.
type Record struct {
	IsDirectory bool

	VolumeName     *string
	TargetFilename *string

	ParentInode *uint32
	TargetInode *uint32

	CreationDate       *time.Time
	VolumeCreationDate *time.Time

	SignatureFSID         *string
	FilesystemDescription *string

	DiskType            *uint16
	DiskTypeDescription *string

	VolumeFlags *string

	AliasToRootDepth  *uint16
	RootToTargetDepth *uint16

	Application *string
	TargetType  *string

	FolderName       *string
	CNIDPath         *string
	HFSPath          *string
	DriverName       *string
	Path             *string
	VolumeMountPoint *string

	BookmarkIndex int
}

// Limits bounds the work a single Parse call will do on adversarial input.
type Limits struct {
	// MaxTLVIterations caps the named-field list walk. Zero means the
	// package default of 50, matching the format's known field count with
	// headroom.
	MaxTLVIterations int
	// MaxDepth caps recursion into nested alias_data blobs. Zero means the
	// package default of 64.
	MaxDepth int
}

const (
	defaultMaxTLVIterations = 50
	defaultMaxDepth         = 64
)

func (l Limits) tlvCap() int {
	if l.MaxTLVIterations <= 0 {
		return defaultMaxTLVIterations
	}
	return l.MaxTLVIterations
}

func (l Limits) depthCap() int {
	if l.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return l.MaxDepth
}
