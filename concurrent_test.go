package atomictx

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentCommittersConverge exercises the convergence property: N
// committers racing on the same target all succeed, exactly one of their
// payloads lands at the target, and no mole siblings survive.
func TestConcurrentCommittersConverge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.txt")
	const n = 10
	const size = 1 << 20

	payloads := make([][]byte, n)
	for i := range payloads {
		payloads[i] = make([]byte, size)
		for j := range payloads[i] {
			payloads[i][j] = byte(i)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx, err := Begin(path, Create, 0o644)
			if err != nil {
				errs[i] = err
				return
			}
			if _, err := tx.File().Write(payloads[i]); err != nil {
				errs[i] = err
				tx.End(false)
				return
			}
			errs[i] = tx.End(true)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoErrorf(t, err, "committer %d", i)
	}

	final, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, final, size)

	matched := false
	for _, p := range payloads {
		if string(p) == string(final) {
			matched = true
			break
		}
	}
	assert.True(t, matched, "final contents must match exactly one payload")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no mole or temp siblings should remain")
}
