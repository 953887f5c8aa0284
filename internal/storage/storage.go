package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const historyFile = "history.json"

// Outcome of a recorded submission
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Record is one submission attempt
type Record struct {
	ID          uuid.UUID `json:"id"`
	Time        time.Time `json:"time"`
	ChainID     int64     `json:"chain_id"`
	Pool        string    `json:"pool"`
	Account     string    `json:"account"`
	Kind        string    `json:"kind"`
	Operation   string    `json:"operation"`
	Asset       string    `json:"asset"`
	Amount      string    `json:"amount"`
	ApproveHash string    `json:"approve_hash,omitempty"`
	TxHash      string    `json:"tx_hash,omitempty"`
	Outcome     Outcome   `json:"outcome"`
	Error       string    `json:"error,omitempty"`
}

// History is the submission log kept in the data directory
type History struct {
	path string
	mu   sync.Mutex
}

// NewHistory opens the history in dataDir, creating the directory
func NewHistory(dataDir string) (*History, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create app data directory: %w", err)
	}
	return &History{path: filepath.Join(dataDir, historyFile)}, nil
}

// Path returns the history file location
func (h *History) Path() string {
	return h.path
}

// Append stores rec, assigning an ID and time when unset
func (h *History) Append(rec Record) (Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}

	records, err := h.load()
	if err != nil {
		return rec, err
	}
	records = append(records, rec)

	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return rec, fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0600); err != nil {
		return rec, fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		return rec, fmt.Errorf("failed to replace history file: %w", err)
	}
	return rec, nil
}

// List returns records newest first, at most limit when limit > 0
func (h *History) List(limit int) ([]Record, error) {
	h.mu.Lock()
	records, err := h.load()
	h.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.After(records[j].Time)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (h *History) load() ([]Record, error) {
	fileData, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(fileData, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return records, nil
}
