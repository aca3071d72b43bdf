package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileRecord is one entry of the JSON state file.
type fileRecord struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore persists records to a JSON file, rewriting it on every Set.
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

// NewFileStore creates a FileStore, creating parent directories as needed.
func NewFileStore(filePath string) (*FileStore, error) {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	return &FileStore{filePath: filePath}, nil
}

// load reads the state file. Returns an empty map if the file doesn't exist.
func (f *FileStore) load() (map[string]fileRecord, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]fileRecord{}, nil
		}
		return nil, err
	}
	records := map[string]fileRecord{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	return records, nil
}

// save writes to a temp file and renames it over the state file.
func (f *FileStore) save(records map[string]fileRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.filePath)
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return "", false, err
	}
	rec, ok := records[key]
	return rec.Value, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return err
	}
	records[key] = fileRecord{Value: value, UpdatedAt: time.Now().UTC()}
	return f.save(records)
}

func (f *FileStore) List(_ context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(records))
	for k, r := range records {
		out[k] = r.Value
	}
	return out, nil
}

func (f *FileStore) Close() error { return nil }
