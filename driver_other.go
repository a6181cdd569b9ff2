//go:build !darwin

package plistutils

import "fmt"

// getxattrFallback has no unix.Getxattr equivalent to fall back to outside
// darwin; com.apple.FinderInfo doesn't exist on these platforms anyway.
func getxattrFallback(path, attr string) ([]byte, error) {
	return nil, fmt.Errorf("driver: extended attribute %q not supported on this platform", attr)
}
