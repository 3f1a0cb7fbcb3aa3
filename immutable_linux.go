//go:build linux

package atomictx

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FS_IMMUTABLE_FL is the ext2/ext4-style immutable attribute bit from
// <linux/fs.h>. golang.org/x/sys/unix does not export it.
const FS_IMMUTABLE_FL = 0x00000010

// isImmutable reports whether path has the ext2/ext4-style FS_IMMUTABLE_FL
// attribute set, via FS_IOC_GETFLAGS.
func isImmutable(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s for flags: %w", path, err)
	}
	defer f.Close()

	flags, err := unix.IoctlGetInt(int(f.Fd()), unix.FS_IOC_GETFLAGS)
	if err != nil {
		// Not every filesystem supports this ioctl (tmpfs, overlayfs in
		// some configurations); treat that as "no immutable support"
		// rather than a hard failure.
		if isENOTTY(err) {
			return false, nil
		}
		return false, fmt.Errorf("get flags on %s: %w", path, err)
	}
	return flags&FS_IMMUTABLE_FL != 0, nil
}

func clearImmutable(path string) error {
	return setFlag(path, FS_IMMUTABLE_FL, false)
}

func setImmutable(path string) error {
	return setFlag(path, FS_IMMUTABLE_FL, true)
}

func setFlag(path string, bit int, on bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s for flags: %w", path, err)
	}
	defer f.Close()

	flags, err := unix.IoctlGetInt(int(f.Fd()), unix.FS_IOC_GETFLAGS)
	if err != nil {
		if isENOTTY(err) {
			return nil
		}
		return fmt.Errorf("get flags on %s: %w", path, err)
	}
	if on {
		flags |= bit
	} else {
		flags &^= bit
	}
	if err := unix.IoctlSetInt(int(f.Fd()), unix.FS_IOC_SETFLAGS, flags); err != nil {
		return fmt.Errorf("set flags on %s: %w", path, err)
	}
	return nil
}
