package alias

import "fmt"

// UnsupportedVersionError reports an Alias header whose version field was
// neither 2 nor 3.
type UnsupportedVersionError struct {
	version  uint16
	pathHint string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("alias: unsupported version %d in %q", e.version, e.pathHint)
}

func newUnsupportedVersionError(version uint16, pathHint string) *UnsupportedVersionError {
	return &UnsupportedVersionError{version: version, pathHint: pathHint}
}
