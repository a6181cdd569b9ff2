package keyedarchive

import "fmt"

// CycleError reports a UID reference that points back to an object already
// on the current resolution path.
type CycleError struct {
	index int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("keyedarchive: cycle detected resolving $objects[%d]", e.index)
}

func newCycleError(index int) *CycleError {
	return &CycleError{index: index}
}

// UnknownArchiverError reports a tree whose $archiver/$version fields don't
// match a format this package knows how to walk.
type UnknownArchiverError struct {
	archiver string
	version  int64
}

func (e *UnknownArchiverError) Error() string {
	return fmt.Sprintf("keyedarchive: unrecognized archiver %q version %d", e.archiver, e.version)
}

func newUnknownArchiverError(archiver string, version int64) *UnknownArchiverError {
	return &UnknownArchiverError{archiver: archiver, version: version}
}
