package atomictx

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginCreateWritesNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	tx, err := Begin(path, Create, 0o640)
	require.NoError(t, err)

	_, err = tx.File().Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, tx.End(true))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestBeginWithoutCreateFailsOnMissingOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.txt")

	_, err := Begin(path, 0, 0)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBeginSeedsFromExistingOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	tx, err := Begin(path, 0, 0)
	require.NoError(t, err)
	require.NoError(t, tx.File().Truncate(0))
	_, err = tx.File().Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = tx.File().Write([]byte("NEW"))
	require.NoError(t, err)
	require.NoError(t, tx.End(true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "NEW", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestBeginAppendPositionsAtEOF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	tx, err := Begin(path, Append, 0)
	require.NoError(t, err)
	_, err = tx.File().Write([]byte("y"))
	require.NoError(t, err)
	require.NoError(t, tx.End(true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xy", string(data))
}

func TestAbortLeavesOriginalUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	tx, err := Begin(path, Append, 0)
	require.NoError(t, err)
	_, err = tx.File().Write([]byte("y"))
	require.NoError(t, err)
	require.NoError(t, tx.End(false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBeginTruncateSkipsSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o600))

	tx, err := Begin(path, Truncate, 0o644)
	require.NoError(t, err)
	_, err = tx.File().Write([]byte("short"))
	require.NoError(t, err)
	require.NoError(t, tx.End(true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestEndNegativeOneIsNoOp(t *testing.T) {
	assert.NoError(t, End(-1, true))
	assert.NoError(t, End(-1, false))
}

func TestCommittedReflectsSuccessfulCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	tx, err := Begin(path, Create, 0o644)
	require.NoError(t, err)
	assert.False(t, tx.Committed())

	require.NoError(t, tx.End(true))
	assert.True(t, tx.Committed())
}

func TestCommittedFalseAfterAbort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	tx, err := Begin(path, Create, 0o644)
	require.NoError(t, err)

	require.NoError(t, tx.End(false))
	assert.False(t, tx.Committed())
}

func TestSetPreserveImmutableDoesNotBlockOrdinaryCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	tx, err := Begin(path, Create, 0o644)
	require.NoError(t, err)
	tx.SetPreserveImmutable(true)

	require.NoError(t, tx.End(true))
	assert.True(t, tx.Committed())
}

func TestRoundTripIsByteExact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.txt")
	payload := make([]byte, 1<<20)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	tx, err := Begin(path, Create, 0o644)
	require.NoError(t, err)
	_, err = tx.File().Write(payload)
	require.NoError(t, err)
	require.NoError(t, tx.End(true))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
