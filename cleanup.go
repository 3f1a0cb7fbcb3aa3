package atomictx

import (
	"os"
	"path/filepath"
	"time"
)

// StaleTemp describes a leftover temporary or mole found by
// WalkStaleTemps, orphaned by a process that exited without calling End
// (and predates this process's registry, so it isn't reachable through
// the normal signal/exit cleanup path).
type StaleTemp struct {
	Path    string
	ModTime time.Time
	Mole    bool
}

// WalkStaleTemps scans dir for entries matching the temp or mole name
// shape (basename + "." + 6 chars, optionally + ".mole") whose mtime is
// older than age, calling fn for each one found. It does not touch
// anything; use CleanStaleTemps to remove what it finds.
func WalkStaleTemps(dir string, age time.Duration, fn func(StaleTemp)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-age)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		base, mole := staleTempBase(name)
		if base == "" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		fn(StaleTemp{Path: filepath.Join(dir, name), ModTime: info.ModTime(), Mole: mole})
	}
	return nil
}

// CleanStaleTemps removes every stale temp/mole WalkStaleTemps finds in
// dir older than age, returning the count removed and the first removal
// error encountered (it keeps going after an error on one entry).
func CleanStaleTemps(dir string, age time.Duration) (int, error) {
	var removed int
	var firstErr error
	err := WalkStaleTemps(dir, age, func(s StaleTemp) {
		if err := os.Remove(s.Path); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		removed++
	})
	if err != nil {
		return removed, err
	}
	return removed, firstErr
}

// staleTempBase recognizes <base>.<6 chars> and <base>.<6 chars>.mole
// shapes in name, returning the original basename and whether it was a
// mole. It returns "" if name doesn't match either shape.
func staleTempBase(name string) (base string, mole bool) {
	mole = len(name) > len(moleSuffix) && name[len(name)-len(moleSuffix):] == moleSuffix
	core := name
	if mole {
		core = name[:len(name)-len(moleSuffix)]
	}
	if len(core) < tempSuffixLen+1 {
		return "", false
	}
	suffixStart := len(core) - tempSuffixLen
	if core[suffixStart-1] != '.' {
		return "", false
	}
	for _, c := range core[suffixStart:] {
		if !isTempSuffixChar(byte(c)) {
			return "", false
		}
	}
	return core[:suffixStart-1], mole
}

func isTempSuffixChar(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	default:
		return false
	}
}
