//go:build unix

package atomictx

import (
	"golang.org/x/sys/unix"
)

// lockShared takes an advisory shared lock on fd, used by verifiedCopy to
// let other cooperating writers know a read is in progress. When
// nonBlocking is set, the non-blocking lock variant is used and
// contention is reported as EWOULDBLOCK instead of waiting.
func lockShared(fd int, nonBlocking bool) error {
	return flock(fd, unix.LOCK_SH, nonBlocking)
}

// lockExclusive takes an advisory exclusive lock on fd, used by whack-a-mole
// to serialize the final rename onto the target across cooperating
// processes.
func lockExclusive(fd int, nonBlocking bool) error {
	return flock(fd, unix.LOCK_EX, nonBlocking)
}

// unlock releases whatever advisory lock fd currently holds.
func unlock(fd int) error {
	return unix.Flock(fd, unix.LOCK_UN)
}

func flock(fd int, how int, nonBlocking bool) error {
	if nonBlocking {
		how |= unix.LOCK_NB
	}
	for {
		err := unix.Flock(fd, how)
		if err == nil {
			return nil
		}
		if isEINTR(err) {
			continue
		}
		return err
	}
}
