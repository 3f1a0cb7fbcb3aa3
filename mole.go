package atomictx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const moleSuffix = ".mole"

// whack runs the convergent rename protocol: it promotes tempPath to a
// mole, scans orig's directory for every other mole racing to replace
// orig, keeps only the lexicographically greatest (the survivor), and
// renames the survivor onto origPath under an exclusive advisory lock.
//
// A rename that fails with ENOENT at the final step is not an error:
// another committer in the same cohort already adopted or removed the
// survivor, and the caller's goal (some temporary from this cohort
// replacing orig) still holds.
func whack(origPath, tempPath string, nonBlocking, preserveImmutable bool) (bool, error) {
	molePath := tempPath + moleSuffix
	if err := os.Rename(tempPath, molePath); err != nil {
		return false, fmt.Errorf("promote %s to mole: %w", tempPath, err)
	}

	dir := filepath.Dir(origPath)
	base := filepath.Base(origPath)

	survivor, err := scanMoles(dir, base, molePath)
	if err != nil {
		return false, fmt.Errorf("scan moles in %s: %w", dir, err)
	}

	lockFile, err := os.Open(origPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			commitErr := commitSurvivor(survivor, origPath)
			return commitErr == nil, commitErr
		}
		return false, fmt.Errorf("open %s for lock: %w", origPath, err)
	}
	fd := int(lockFile.Fd())

	if err := lockExclusive(fd, nonBlocking); err != nil {
		lockFile.Close()
		if nonBlocking && isEWouldBlock(err) {
			return false, fmt.Errorf("%w: %w", errBusy, err)
		}
		return false, fmt.Errorf("lock %s for commit: %w", origPath, err)
	}

	// preserveImmutable opts out of temporarily clearing an immutable
	// target's attribute; the commit rename is left to fail on its own
	// (typically EPERM) rather than silently lifting the protection.
	var restore func() error
	var unprotectErr error
	if !preserveImmutable {
		restore, unprotectErr = unprotect(origPath)
	}

	commitErr := commitSurvivor(survivor, origPath)
	committed := commitErr == nil

	var teardownErrs []error
	if unprotectErr != nil {
		teardownErrs = append(teardownErrs, fmt.Errorf("clear immutability on %s: %w", origPath, unprotectErr))
	} else if restore != nil {
		if err := restore(); err != nil {
			teardownErrs = append(teardownErrs, fmt.Errorf("restore immutability on %s: %w", origPath, err))
		}
	}
	if err := unlock(fd); err != nil {
		teardownErrs = append(teardownErrs, fmt.Errorf("unlock %s: %w", origPath, err))
	}
	if err := lockFile.Close(); err != nil {
		teardownErrs = append(teardownErrs, fmt.Errorf("close lock fd on %s: %w", origPath, err))
	}

	// A successful rename wins: committed stays true even if teardown
	// fails, and teardown errors are then returned on their own. When the
	// rename itself failed, teardown errors are joined onto its error.
	if commitErr != nil {
		return false, errors.Join(append([]error{commitErr}, teardownErrs...)...)
	}
	if len(teardownErrs) > 0 {
		return committed, errors.Join(teardownErrs...)
	}
	return committed, nil
}

// commitSurvivor performs the final rename, treating ENOENT as success.
func commitSurvivor(survivor, origPath string) error {
	if err := os.Rename(survivor, origPath); err != nil {
		if isENOENT(err) {
			return nil
		}
		return fmt.Errorf("rename %s onto %s: %w", survivor, origPath, err)
	}
	return nil
}

// scanMoles walks dir, applying the mole predicate against base, and
// returns the lexicographically greatest mole basename's full path. own
// is always included as a candidate even if the directory listing races
// ahead of it (it was just created by the caller).
func scanMoles(dir, base, own string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	survivor := filepath.Base(own)
	for _, e := range entries {
		name := e.Name()
		if name == survivor {
			continue
		}
		if !isMoleName(name, base) {
			continue
		}
		if name > survivor {
			if err := removeIgnoreNotExist(filepath.Join(dir, survivor)); err != nil {
				return "", err
			}
			survivor = name
		} else {
			if err := removeIgnoreNotExist(filepath.Join(dir, name)); err != nil {
				return "", err
			}
		}
	}
	return filepath.Join(dir, survivor), nil
}

func removeIgnoreNotExist(path string) error {
	if err := os.Remove(path); err != nil && !isENOENT(err) {
		return err
	}
	return nil
}

// isMoleName reports whether e names a mole for base: e has length
// len(base)+12, starts with base, and ends with ".mole" (the 7
// characters between are a dot plus the six-character unique suffix).
func isMoleName(e, base string) bool {
	if len(e) != len(base)+tempSuffixLen+1+len(moleSuffix) {
		return false
	}
	if !strings.HasPrefix(e, base) {
		return false
	}
	return strings.HasSuffix(e, moleSuffix) && e[len(base)] == '.'
}
