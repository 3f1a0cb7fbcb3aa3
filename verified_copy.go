package atomictx

import (
	"fmt"
	"os"
)

// verifiedCopy copies all of src into dst, detecting concurrent mutation
// of src via a shared advisory lock plus an mtime double-check.
//
// The shared lock only blocks other *cooperating* writers, ones that
// take an exclusive lock at commit time, as whack-a-mole does. The mtime
// snapshot-before/snapshot-after comparison catches everyone else: a
// non-cooperating writer that mutated src mid-copy without taking any
// lock still bumps src's mtime, and that's enough to detect the race even
// though it can't be prevented.
func verifiedCopy(src, dst *os.File, nonBlocking bool) error {
	fd := int(src.Fd())
	if err := lockShared(fd, nonBlocking); err != nil {
		if nonBlocking && isEWouldBlock(err) {
			return fmt.Errorf("source locked: %w: %w", errBusy, err)
		}
		return fmt.Errorf("lock source for seed copy: %w", err)
	}
	defer unlock(fd)

	for {
		before, err := src.Stat()
		if err != nil {
			return err
		}

		if _, err := dst.Seek(0, 0); err != nil {
			return err
		}
		if err := dst.Truncate(0); err != nil {
			return err
		}
		if _, err := src.Seek(0, 0); err != nil {
			return err
		}
		if err := streamCopy(src, dst); err != nil {
			return err
		}

		after, err := src.Stat()
		if err != nil {
			return err
		}

		if mtimeEqual(before, after) {
			return nil
		}
		if nonBlocking {
			return fmt.Errorf("source mutated during seed copy: %w", errBusy)
		}
		// Blocking mode: the source changed under us, retry the whole copy.
	}
}

// mtimeEqual compares both seconds and nanoseconds; a coarser comparison
// could miss a mutation that lands within the same second.
func mtimeEqual(a, b os.FileInfo) bool {
	return a.ModTime().Equal(b.ModTime())
}
