package atomictx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Flags controls how Begin locates, creates, and positions the temporary
// it hands back. Each flag is a distinct bit; the zero value means
// read-modify-write against an existing original, positioned at offset 0,
// blocking on contention.
type Flags uint8

const (
	// Create allows Begin to proceed when orig does not exist yet. Without
	// it, a missing original is ENOENT.
	Create Flags = 1 << 0
	// Append positions the write offset at EOF once, at Begin time. It is
	// not like O_APPEND: writes after the initial position are not
	// re-seeked to EOF.
	Append Flags = 1 << 1
	// Truncate skips seeding the temporary from the original and starts
	// the new file empty, using the mode argument rather than the
	// original's mode.
	Truncate Flags = 1 << 2
	// NonBlocking makes every lock Begin/End take non-blocking, and makes
	// a source mutated mid seed-copy a busy error instead of a retry.
	NonBlocking Flags = 1 << 3
)

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

// Transaction is a live handle returned by Begin. The zero value is not
// usable; obtain one only from Begin.
type Transaction struct {
	origPath          string
	tempPath          string
	file              *os.File
	mode              os.FileMode
	flags             Flags
	ended             bool
	committed         bool
	preserveImmutable bool
}

// File returns the writable temporary backing t. Callers write to it
// freely until End is called.
func (t *Transaction) File() *os.File { return t.file }

// Fd returns the file descriptor identifying this transaction, the same
// value the registry is keyed by.
func (t *Transaction) Fd() int { return int(t.file.Fd()) }

// OrigPath returns the target path passed to Begin.
func (t *Transaction) OrigPath() string { return t.origPath }

// TempPath returns the private temporary's path.
func (t *Transaction) TempPath() string { return t.tempPath }

// Committed reports whether this transaction's temporary was successfully
// renamed onto OrigPath. It is meaningful only after End returns. A
// successful rename makes this true even if End also returns a non-nil
// error from lock or immutability teardown afterward.
func (t *Transaction) Committed() bool { return t.committed }

// SetPreserveImmutable controls whether a commit is allowed to
// temporarily clear OrigPath's immutable attribute (if any) to perform
// the final rename. The default, false, clears the attribute for the
// rename and restores it afterward. Setting it true leaves the
// attribute untouched, so a commit against an immutable target fails
// instead of silently lifting the protection.
func (t *Transaction) SetPreserveImmutable(preserve bool) { t.preserveImmutable = preserve }

// Begin opens a transaction against path. On success, the returned
// Transaction's File is writable and positioned per flags; the caller
// must eventually call End exactly once.
//
// If the original at path exists and Truncate is not set, its contents
// are seeded into the temporary via the verified copier and its mode is
// captured for commit. If the original is absent, Create must be set or
// Begin fails with an error wrapping fs.ErrNotExist.
func Begin(path string, flags Flags, mode os.FileMode) (*Transaction, error) {
	origPath := path
	dir := filepath.Dir(origPath)
	base := filepath.Base(origPath)

	origFile, origErr := os.Open(origPath)
	origExists := origErr == nil
	if origErr != nil && !errors.Is(origErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat original: %w", origErr)
	}
	if origFile != nil {
		defer origFile.Close()
	}
	if !origExists && !flags.has(Create) {
		return nil, fmt.Errorf("begin %s: %w", path, fs.ErrNotExist)
	}

	var finalMode os.FileMode
	var origInfo os.FileInfo
	if origExists {
		info, err := origFile.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat original: %w", err)
		}
		origInfo = info
	}
	if flags.has(Truncate) || !origExists {
		finalMode = mode.Perm()
	} else {
		finalMode = origInfo.Mode().Perm()
	}

	tempPath, tempFile, err := createTemp(dir, base)
	if err != nil {
		return nil, fmt.Errorf("create temp for %s: %w", path, err)
	}

	t := &Transaction{
		origPath: origPath,
		tempPath: tempPath,
		file:     tempFile,
		mode:     finalMode,
		flags:    flags,
	}

	if err := t.seed(origExists, origFile); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return nil, err
	}

	if err := t.position(); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return nil, fmt.Errorf("position temp for %s: %w", path, err)
	}

	globalRegistry.insert(t)
	return t, nil
}

// createTemp atomically creates a uniquely-named temporary next to base
// in dir, retrying on name collision the same way mkstemp's internal
// retry loop does.
func createTemp(dir, base string) (string, *os.File, error) {
	for {
		candidate := filepath.Join(dir, base+"."+newTempSuffix())
		f, err := os.OpenFile(candidate, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return candidate, f, nil
		}
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return "", nil, err
	}
}

func (t *Transaction) seed(origExists bool, origFile *os.File) error {
	if t.flags.has(Truncate) || !origExists {
		return nil
	}
	if err := verifiedCopy(origFile, t.file, t.flags.has(NonBlocking)); err != nil {
		return fmt.Errorf("seed temp from %s: %w", t.origPath, err)
	}
	return nil
}

func (t *Transaction) position() error {
	switch {
	case t.flags.has(Append):
		_, err := t.file.Seek(0, io.SeekEnd)
		return err
	default:
		_, err := t.file.Seek(0, io.SeekStart)
		return err
	}
}

// End closes fd, removes it from the registry, and either commits the
// temporary onto its original (replacing it atomically via whack-a-mole)
// or discards it. fd == -1 is a no-op that returns nil.
//
// If fd was never produced by Begin (or End was already called for it),
// the registry lookup simply misses and End returns nil.
func End(fd int, commit bool) error {
	if fd == -1 {
		return nil
	}
	t, ok := globalRegistry.take(fd)
	if !ok {
		return nil
	}
	return t.end(commit)
}

// End is the method form of the package-level End, for callers holding a
// *Transaction directly rather than a bare fd.
func (t *Transaction) End(commit bool) error {
	if _, ok := globalRegistry.take(t.Fd()); !ok {
		return nil
	}
	return t.end(commit)
}

func (t *Transaction) end(commit bool) error {
	if t.ended {
		return nil
	}
	t.ended = true

	if err := t.file.Close(); err != nil {
		return fmt.Errorf("close temp %s: %w", t.tempPath, err)
	}

	if !commit {
		if err := removeIgnoreNotExist(t.tempPath); err != nil {
			return fmt.Errorf("abort %s: %w", t.tempPath, err)
		}
		return nil
	}

	if err := os.Chmod(t.tempPath, t.mode); err != nil {
		return fmt.Errorf("chmod temp %s: %w", t.tempPath, err)
	}

	committed, err := whack(t.origPath, t.tempPath, t.flags.has(NonBlocking), t.preserveImmutable)
	t.committed = committed
	return err
}
