package bookmark

import "time"

// Record is the decoded form of one bookmark TOC. A bookmark blob can hold
// several TOCs (one per directory level plus the root), so parsing one blob
// yields one Record per TOC visited while following next_toc.
type Record struct {
	BookmarkIndex int
	TOCDepth      uint32

	Path      *string
	InodePath *string

	ResourceProps *string
	VolumeProps   *string

	TargetFilename *string
	TargetInode    *uint64
	CreationDate   *time.Time

	VolumePath         *string
	VolumeURL          *string
	VolumeName         *string
	VolumeUUID         *string
	VolumeSize         *uint64
	VolumeCreationDate *time.Time
	VolumeMountPoint   *string
	VolumeInfoDepths   *string
	VolumeWasBoot      *bool
	DiskImageDepth     *uint64

	SandboxUUID *string
	SandboxPath *string

	UserName             *string
	UserUID              *uint64
	DisplayName          *string
	BookmarkCreationTime *time.Time

	// AliasData holds the raw bytes of a 0xfe00 field, when present, for the
	// driver to hand to the alias decoder. Not one of the essential
	// attributes a bookmark record surfaces to callers on its own.
	AliasData []byte
}

// Limits bounds the work a single Parse call will do on adversarial input.
// The zero value uses the package defaults.
type Limits struct {
	// MaxTOCs caps the number of TOCs followed via next_toc, protecting
	// against a cyclic chain. Zero means the package default of 256.
	MaxTOCs int
	// MaxArrayDepth caps recursion into nested ARRAY-class pool values.
	// Zero means the package default of 64.
	MaxArrayDepth int
}

const (
	defaultMaxTOCs       = 256
	defaultMaxArrayDepth = 64
)

func (l Limits) tocCap() int {
	if l.MaxTOCs <= 0 {
		return defaultMaxTOCs
	}
	return l.MaxTOCs
}

func (l Limits) arrayDepthCap() int {
	if l.MaxArrayDepth <= 0 {
		return defaultMaxArrayDepth
	}
	return l.MaxArrayDepth
}
