// Package history keeps a journal of committed renames so the last batch
// can be undone.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Rename records one committed rename.
type Rename struct {
	// Note is the vault-relative path of the note the attachment belonged to.
	Note string `json:"note,omitempty"`
	// OldPath and NewPath are vault-relative attachment paths.
	OldPath   string    `json:"old_path"`
	NewPath   string    `json:"new_path"`
	Timestamp time.Time `json:"timestamp"`
}

// Batch groups the renames committed by one command invocation. Each batch
// is its own unit of undo; batches are never merged.
type Batch struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Renames   []Rename  `json:"renames"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal is the on-disk rename history.
type Journal struct {
	mu       sync.RWMutex
	filePath string
	Batches  []Batch `json:"batches"`
}

// New creates an empty journal at filePath.
func New(filePath string) *Journal {
	return &Journal{filePath: filePath}
}

// Load reads the journal from disk; a missing file yields an empty journal.
func Load(filePath string) (*Journal, error) {
	j := New(filePath)

	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return j, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Save writes the journal to disk.
func (j *Journal) Save() error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(j.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(j.filePath, data, 0644)
}

// Record appends a batch. Empty batches are dropped.
func (j *Journal) Record(batch Batch) {
	if len(batch.Renames) == 0 {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.Batches = append(j.Batches, batch)
}

// LastBatch returns the most recent batch without removing it.
func (j *Journal) LastBatch() (Batch, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if len(j.Batches) == 0 {
		return Batch{}, false
	}
	return j.Batches[len(j.Batches)-1], true
}

// PopLast removes and returns the most recent batch.
func (j *Journal) PopLast() (Batch, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.Batches) == 0 {
		return Batch{}, false
	}
	last := j.Batches[len(j.Batches)-1]
	j.Batches = j.Batches[:len(j.Batches)-1]
	return last, true
}
