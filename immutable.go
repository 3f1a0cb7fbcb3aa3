package atomictx

// The immutable capability is implemented per platform in
// immutable_linux.go, immutable_bsd.go, and immutable_other.go (the
// no-op fallback). Every platform exposes the same three functions:
// isImmutable, clearImmutable, setImmutable.

// unprotect clears path's immutable attribute if it is set, returning a
// restore closure that sets it again. Callers that don't care whether
// immutability support exists on this platform can call it
// unconditionally: restore is nil whenever the attribute was not set,
// which is always the case on platforms without the capability (they
// report isImmutable == false unconditionally).
func unprotect(path string) (restore func() error, err error) {
	immutable, err := isImmutable(path)
	if err != nil {
		return nil, err
	}
	if !immutable {
		return nil, nil
	}
	if err := clearImmutable(path); err != nil {
		return nil, err
	}
	return func() error { return setImmutable(path) }, nil
}
