package seen

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"sjsage522/bountyradar/logger"
	"sjsage522/bountyradar/pkg/errors"
)

// FileStore keeps the seen set as a JSON array of links on disk
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the JSON array at path
func (f *FileStore) Load(_ context.Context) (*SeenSet, error) {
	log := logger.ForStore()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSeenSet(), nil
		}
		return nil, errors.NewPersistence("file", "failed to read seen store", err)
	}

	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		log.Warn().Err(err).Str("path", f.path).Msg("Seen store is corrupt, starting empty")
		return NewSeenSet(), nil
	}

	log.Debug().Int("count", len(links)).Str("path", f.path).Msg("Loaded seen links")
	return NewSeenSet(links...), nil
}

// Save writes the set to a temporary file and renames it over path
func (f *FileStore) Save(_ context.Context, set *SeenSet) error {
	data, err := json.MarshalIndent(set.Links(), "", "    ")
	if err != nil {
		return errors.NewPersistence("file", "failed to encode seen links", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewPersistence("file", "failed to create store directory", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.NewPersistence("file", "failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewPersistence("file", "failed to write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewPersistence("file", "failed to close temp file", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.NewPersistence("file", "failed to replace seen store", err)
	}

	logger.ForStore().Debug().Int("count", set.Len()).Str("path", f.path).Msg("Saved seen links")
	return nil
}
