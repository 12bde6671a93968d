package fabric

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })
	return fs
}

func sampleFabric(idx uint8) Fabric {
	f := Fabric{
		Index:         idx,
		FabricID:      0xAABBCCDD,
		NodeID:        uint64(idx) + 1,
		NOCSigningKey: []byte{1, 2, 3},
		NOC:           []byte("noc-bytes"),
	}
	f.IPK[0] = 0xFE
	return f
}

func TestFileStoreStoreAndLoadAll(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, fs.Store(1, sampleFabric(1)))
	require.NoError(t, fs.Store(2, sampleFabric(2)))

	all, err := fs.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)

	byIdx := map[uint8]Fabric{}
	for _, f := range all {
		byIdx[f.Index] = f
	}
	require.Equal(t, sampleFabric(1), byIdx[1])
	require.Equal(t, sampleFabric(2), byIdx[2])
}

func TestFileStoreStoreInvalidatesLoadAllCache(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, fs.Store(1, sampleFabric(1)))

	first, err := fs.LoadAll()
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, fs.Store(2, sampleFabric(2)))
	second, err := fs.LoadAll()
	require.NoError(t, err)
	require.Len(t, second, 2)
}

func TestFileStoreRemove(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, fs.Store(1, sampleFabric(1)))
	require.NoError(t, fs.Remove(1))

	all, err := fs.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 0)
}

func TestFileStoreRemoveAbsentIsNotError(t *testing.T) {
	fs := newTestStore(t)
	require.NoError(t, fs.Remove(9))
}

func TestFileStoreInvalidatesOnExternalChange(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.LoadAll()
	require.NoError(t, err)

	// Write a fabric file directly, bypassing fs.Store, simulating a
	// second process (e.g. a commissioning tool) touching the directory.
	b, err := json.Marshal(sampleFabric(3))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(fs.path(3), b, 0640))

	require.Eventually(t, func() bool {
		fs.mtx.Lock()
		defer fs.mtx.Unlock()
		return !fs.valid
	}, time.Second, 10*time.Millisecond)

	all, err := fs.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
}
