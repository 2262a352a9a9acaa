package enumerator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSink struct{}

func (nopSink) Push(string, ...interface{}) {}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestEnumerateSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "single.evtx")
	touch(t, path)

	found, err := Enumerate(path, nopSink{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, found)
}

func TestEnumerateRejectsNonEvtxFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	touch(t, path)

	_, err := Enumerate(path, nopSink{}, nil)
	assert.Error(t, err)
}

func TestEnumerateDirectoryIsSortedAndRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.evtx"))
	touch(t, filepath.Join(dir, "sub", "a.evtx"))
	touch(t, filepath.Join(dir, "ignore.txt"))

	found, err := Enumerate(dir, nopSink{}, nil)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.True(t, found[0] < found[1], "expected lexicographic order, got %v", found)
}

func TestEnumerateMissingRootIsAnError(t *testing.T) {
	_, err := Enumerate(filepath.Join(t.TempDir(), "missing"), nopSink{}, nil)
	assert.Error(t, err)
}
