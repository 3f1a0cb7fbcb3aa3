//go:build freebsd || netbsd || openbsd || dragonfly || darwin

package atomictx

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// isImmutable reports whether path has UF_IMMUTABLE or SF_IMMUTABLE set
// in st_flags.
func isImmutable(path string) (bool, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	flags := uint32(st.Flags)
	return flags&(unix.UF_IMMUTABLE|unix.SF_IMMUTABLE) != 0, nil
}

func clearImmutable(path string) error {
	return setChflag(path, false)
}

func setImmutable(path string) error {
	return setChflag(path, true)
}

func setChflag(path string, on bool) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	flags := uint32(st.Flags)
	if on {
		flags |= unix.UF_IMMUTABLE
	} else {
		flags &^= unix.UF_IMMUTABLE
		flags &^= unix.SF_IMMUTABLE
	}
	if err := unix.Chflags(path, int(flags)); err != nil {
		return fmt.Errorf("chflags %s: %w", path, err)
	}
	return nil
}
