// Package atomictx implements an atomic file update transaction primitive
// for POSIX-like filesystems.
//
// A caller begins a transaction against a target path, receives a writable
// *os.File into a private temporary living next to the target, mutates
// that temporary freely, and then either commits (atomically replacing the
// target with the new contents) or aborts (discarding the temporary).
//
// Concurrent commits from multiple processes racing against the same
// target converge on a single winner via the convergent-rename protocol
// ("whack-a-mole", see mole.go): every loser's temporary is deleted, and
// exactly one rename lands on the target.
//
// The package does not provide crash-consistent durability beyond what
// rename(2) gives on the host filesystem, does not lock against
// non-cooperating processes that ignore advisory locks, and requires the
// temporary and the target to live on the same filesystem so rename is
// atomic.
package atomictx
