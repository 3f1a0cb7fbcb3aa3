package atomictx

import "errors"

// errBusy is returned (always wrapped) when NONBLOCKING contention is
// detected: a held lock, or a source that mutated mid seed-copy. Callers
// should use IsBusy rather than comparing against this directly, since it
// is always wrapped with context via fmt.Errorf("...: %w", ...).
var errBusy = errors.New("atomictx: busy")

// IsBusy reports whether err represents NONBLOCKING contention: the
// target or source was locked by another transaction, or the source
// mutated during a non-blocking seed copy. It unwraps err the same way
// errors.Is does, so wrapping with fmt.Errorf("...: %w", err) is
// transparent to callers.
func IsBusy(err error) bool {
	return errors.Is(err, errBusy)
}
