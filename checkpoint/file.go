package checkpoint

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileDocument is the on-disk shape of the flat-file checkpoint: a single
// JSON document with the last processed block and the time it was written.
type fileDocument struct {
	LastProcessedBlock uint64    `json:"last_processed_block"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// File is a Store backed by a single JSON file. Writes are made atomic by
// writing to a temporary file in the same directory and renaming it over
// the target, so a crash mid-write never leaves a corrupt checkpoint.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed store at path. The directory containing
// path is created on the first Save if it does not already exist.
func NewFile(path string) *File {
	return &File{path: path}
}

// Load reads the checkpoint document from disk. A missing file is treated
// as "never saved" rather than an error.
func (f *File) Load(context.Context) (uint64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, false, err
	}
	return doc.LastProcessedBlock, true, nil
}

// Save writes the new watermark via write-temp-then-rename.
func (f *File) Save(_ context.Context, block uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	doc := fileDocument{LastProcessedBlock: block, UpdatedAt: time.Now()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".checkpoint-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, f.path)
}

// Close is a no-op; File holds no open handles between calls.
func (f *File) Close() error {
	return nil
}
