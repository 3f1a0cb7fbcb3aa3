package atomictx

import (
	"errors"
	"syscall"
)

// isEINTR reports whether err (possibly wrapped in an *os.PathError or
// *os.SyscallError, as the os package does) is an interrupted-syscall
// error that should be retried transparently.
//
// The Go runtime already retries most EINTR cases internally for regular
// file I/O, but flock and a few other syscalls used directly via
// golang.org/x/sys/unix in this package do not get that treatment, so
// callers still need this check.
func isEINTR(err error) bool {
	return errors.Is(err, syscall.EINTR)
}

// isEWouldBlock reports whether err indicates a non-blocking operation
// would have blocked (EAGAIN/EWOULDBLOCK are the same value on every
// platform this package supports).
func isEWouldBlock(err error) bool {
	return errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN)
}

// isENOENT reports whether err means "no such file or directory", used
// to treat a vanished survivor, mole, or temporary as success rather
// than failure (see mole.go).
func isENOENT(err error) bool {
	return errors.Is(err, syscall.ENOENT)
}

// isENOTTY reports whether err means "inappropriate ioctl for device",
// returned by FS_IOC_GETFLAGS/SETFLAGS on filesystems that don't support
// the ext2-style attribute bits at all (tmpfs, some overlayfs configs).
func isENOTTY(err error) bool {
	return errors.Is(err, syscall.ENOTTY)
}
