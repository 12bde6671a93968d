package fabric

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
)

// FileStore is the default Store: one JSON file per fabric under a
// directory, with a directory-level flock guarding each write so a
// concurrently-running commissioning tool (or a second matterd instance
// pointed at the same path by mistake) cannot interleave a torn write.
// An fsnotify watcher invalidates FileStore's in-memory cache whenever
// something outside this process touches the directory.
type FileStore struct {
	dir      string
	lockPath string

	mtx   sync.Mutex
	cache map[uint8]Fabric
	valid bool

	watcher *fsnotify.Watcher
}

// NewFileStore opens (creating if necessary) a fabric table rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	fs := &FileStore{
		dir:      dir,
		lockPath: filepath.Join(dir, ".lock"),
		watcher:  w,
	}
	go fs.invalidateOnChange()
	return fs, nil
}

// Close stops the directory watcher. It does not delete any fabric data.
func (fs *FileStore) Close() error {
	return fs.watcher.Close()
}

func (fs *FileStore) invalidateOnChange() {
	for range fs.watcher.Events {
		fs.mtx.Lock()
		fs.valid = false
		fs.mtx.Unlock()
	}
}

func (fs *FileStore) path(idx uint8) string {
	return filepath.Join(fs.dir, fmt.Sprintf("fabric-%d.json", idx))
}

func (fs *FileStore) withLock(fn func() error) error {
	fl := flock.New(fs.lockPath)
	if err := fl.Lock(); err != nil {
		return err
	}
	defer fl.Unlock()
	return fn()
}

// Store writes f to disk under idx, taking the directory lock so the
// write is never observed half-written by a concurrent reader.
func (fs *FileStore) Store(idx uint8, f Fabric) error {
	f.Index = idx
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	err = fs.withLock(func() error {
		tmp := fs.path(idx) + ".tmp"
		if err := os.WriteFile(tmp, b, 0640); err != nil {
			return err
		}
		return os.Rename(tmp, fs.path(idx))
	})
	if err != nil {
		return err
	}
	fs.mtx.Lock()
	fs.valid = false
	fs.mtx.Unlock()
	return nil
}

// Remove deletes the entry at idx. Removing an absent entry is not an error.
func (fs *FileStore) Remove(idx uint8) error {
	err := fs.withLock(func() error {
		rerr := os.Remove(fs.path(idx))
		if errors.Is(rerr, os.ErrNotExist) {
			return nil
		}
		return rerr
	})
	if err != nil {
		return err
	}
	fs.mtx.Lock()
	fs.valid = false
	fs.mtx.Unlock()
	return nil
}

// LoadAll reads every *.json file under the store directory,
// caching the result until Store/Remove or an external fsnotify event
// invalidates it.
func (fs *FileStore) LoadAll() ([]Fabric, error) {
	fs.mtx.Lock()
	if fs.valid {
		out := make([]Fabric, 0, len(fs.cache))
		for _, f := range fs.cache {
			out = append(out, f)
		}
		fs.mtx.Unlock()
		return out, nil
	}
	fs.mtx.Unlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, err
	}
	cache := make(map[uint8]Fabric)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(fs.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var f Fabric
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("fabric: %s: %w", e.Name(), err)
		}
		cache[f.Index] = f
	}

	fs.mtx.Lock()
	fs.cache = cache
	fs.valid = true
	out := make([]Fabric, 0, len(cache))
	for _, f := range cache {
		out = append(out, f)
	}
	fs.mtx.Unlock()
	return out, nil
}

var _ Store = (*FileStore)(nil)
