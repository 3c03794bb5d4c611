//go:build !linux && !darwin

package scan

import "github.com/matzehuels/spaceview/pkg/errors"

// FreeSpace is not implemented on this platform.
func FreeSpace(path string) (uint64, error) {
	return 0, errors.New(errors.ErrCodeUnsupported, "free space query not supported for %s", path)
}
