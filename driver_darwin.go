package plistutils

import "golang.org/x/sys/unix"

// getxattrFallback reads an extended attribute directly via unix.Getxattr,
// used whenever the portable pkg/xattr read returns an error.
func getxattrFallback(path, attr string) ([]byte, error) {
	size, err := unix.Getxattr(path, attr, nil)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	n, err := unix.Getxattr(path, attr, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
