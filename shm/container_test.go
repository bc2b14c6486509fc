package shm

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolkov/ringqueue/internal/queue"
)

func tempShmDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ringqueue-shm-test-")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestOpenCreatesThenAttaches(t *testing.T) {
	dir := tempShmDir(t)
	opts := Options{Dir: dir}
	name := fmt.Sprintf("ringqueue-test-%d", os.Getpid())

	writer, region1, err := Open[uint64](name, 8, opts)
	require.NoError(t, err)
	defer region1.Close()

	writer.Push(123)

	reader, region2, err := Open[uint64](name, 8, opts)
	require.NoError(t, err)
	defer region2.Close()

	cursor := &queue.Cursor{}
	h := reader.Recv(cursor)
	require.True(t, h.Ready())
	require.Equal(t, uint64(123), h.Value())
}

func TestOpenRejectsMismatchedCapacity(t *testing.T) {
	dir := tempShmDir(t)
	opts := Options{Dir: dir}
	name := fmt.Sprintf("ringqueue-test-mismatch-%d", os.Getpid())

	_, region1, err := Open[uint64](name, 8, opts)
	require.NoError(t, err)
	defer region1.Close()

	_, _, err = Open[uint64](name, 16, opts)
	require.Error(t, err)
}

func TestRemoveCleansUpFiles(t *testing.T) {
	dir := tempShmDir(t)
	opts := Options{Dir: dir}
	name := fmt.Sprintf("ringqueue-test-remove-%d", os.Getpid())

	_, region, err := Open[uint64](name, 8, opts)
	require.NoError(t, err)
	require.NoError(t, region.Close())

	require.NoError(t, Remove(name, opts))
	require.NoFileExists(t, filepath.Join(dir, name))
	require.NoFileExists(t, filepath.Join(dir, name+".lock"))
}
