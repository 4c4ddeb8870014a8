package checkpoint

import (
	"os"
	"path/filepath"

	"github.com/copyleftdev/TREMOR/internal/errors"
	"github.com/copyleftdev/TREMOR/internal/seisio"
)

// DirStore keeps checkpoints as raw little-endian float32 files in a
// directory, conventionally the one named by CHECKPOINTDIR.
type DirStore struct {
	dir string
}

// NewDirStore validates that dir exists and returns a store rooted there.
func NewDirStore(dir string) (*DirStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "checkpoint directory %s", dir).
			WithComponent("checkpoint")
	}
	if !info.IsDir() {
		return nil, errors.Errorf("checkpoint path %s is not a directory", dir).
			WithComponent("checkpoint")
	}
	return &DirStore{dir: dir}, nil
}

// Save implements Store.
func (s *DirStore) Save(key string, field []float64) error {
	path := filepath.Join(s.dir, key)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create checkpoint %s", path).WithComponent("checkpoint")
	}
	if err := seisio.WriteFloats(f, field); err != nil {
		f.Close()
		return errors.Wrapf(err, "write checkpoint %s", path).WithComponent("checkpoint")
	}
	return f.Close()
}

// Load implements Store.
func (s *DirStore) Load(key string, dst []float64) error {
	path := filepath.Join(s.dir, key)
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open checkpoint %s", path).WithComponent("checkpoint")
	}
	defer f.Close()
	if err := seisio.ReadFloats(f, dst); err != nil {
		return errors.Wrapf(err, "read checkpoint %s", path).WithComponent("checkpoint")
	}
	return nil
}
