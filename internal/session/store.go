// ABOUTME: Durable storage for the persisted session slots
// ABOUTME: Token, username, and role are written, read, and cleared together

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record holds the three persisted session slots
type Record struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Store persists a Record between runs
type Store interface {
	Load() (Record, error)
	Save(Record) error
	Clear() error
}

// FileStore keeps the session in a JSON file inside the config directory
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at configDir
func NewFileStore(configDir string) *FileStore {
	return &FileStore{dir: configDir}
}

// Path returns the location of the session file
func (fs *FileStore) Path() string {
	return filepath.Join(fs.dir, "session.json")
}

// Load reads the persisted slots. A missing file is an empty record.
func (fs *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(fs.Path())
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse session file: %w", err)
	}
	return rec, nil
}

// Save writes all three slots at once
func (fs *FileStore) Save(rec Record) error {
	if fs.dir == "" {
		return errors.New("no config directory for session storage")
	}
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	// Replace atomically: readers see the old record or the new one
	tmp := fs.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return os.Rename(tmp, fs.Path())
}

// Clear removes the session file. Clearing an absent file is not an error.
func (fs *FileStore) Clear() error {
	err := os.Remove(fs.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemoryStore is a Store that lives only as long as the process
type MemoryStore struct {
	mu  sync.Mutex
	rec Record
}

// Load implements Store
func (ms *MemoryStore) Load() (Record, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.rec, nil
}

// Save implements Store
func (ms *MemoryStore) Save(rec Record) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rec = rec
	return nil
}

// Clear implements Store
func (ms *MemoryStore) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rec = Record{}
	return nil
}
