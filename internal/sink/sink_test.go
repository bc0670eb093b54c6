package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_WriteCreatesFile(t *testing.T) {
	dir := t.TempDir()
	l := &Local{Dir: dir}

	dest, err := l.Write(context.Background(), "out/chunks.json", strings.NewReader("[]\n"), 3)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "chunks.json"), dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLocal_WriteOverwrites(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "chunks.json")
	require.NoError(t, os.WriteFile(dest, []byte("old content that is longer"), 0o644))

	l := &Local{}
	_, err := l.Write(context.Background(), dest, strings.NewReader("new"), 3)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestLocal_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	l := &Local{Dir: dir}
	_, err := l.Write(context.Background(), "a.json", strings.NewReader("x"), 1)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestLocal_CancelledContextKeepsOldFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "chunks.json")
	require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := &Local{}
	_, err := l.Write(ctx, dest, strings.NewReader("replacement"), 11)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrite))
	assert.True(t, errors.Is(err, context.Canceled))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestLocal_UnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	l := &Local{}
	_, err := l.Write(context.Background(), filepath.Join(blocker, "chunks.json"), strings.NewReader("[]"), 2)
	require.Error(t, err)

	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, filepath.Join(blocker, "chunks.json"), werr.Dest)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "chunks.json", objectKey("chunks.json"))
	assert.Equal(t, "runs/chunks.json", objectKey("/runs/./chunks.json"))
	assert.Equal(t, "", objectKey(""))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json; charset=utf-8", contentType("a/chunks.JSON"))
	assert.Equal(t, "application/octet-stream", contentType("a/chunks.bin"))
}
