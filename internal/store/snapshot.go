package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"
)

// SnapshotVersion is bumped whenever the persisted state shape changes.
// Older snapshots are rejected rather than migrated; callers start fresh.
const SnapshotVersion = 1

// SnapshotStore persists whole-state JSON snapshots under named slots.
type SnapshotStore interface {
	Save(ctx context.Context, slot string, state interface{}) error
	// Load fills state from the slot. Returns apperrors.ErrSnapshotNotFound
	// when the slot is empty and apperrors.ErrSnapshotVersion when the
	// snapshot was written by a different schema version.
	Load(ctx context.Context, slot string, state interface{}) error
	Delete(ctx context.Context, slot string) error
}

type snapshotEnvelope struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// EncodeSnapshot wraps state in a versioned envelope.
func EncodeSnapshot(state interface{}) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return json.Marshal(snapshotEnvelope{
		Version: SnapshotVersion,
		SavedAt: time.Now().UTC(),
		Data:    data,
	})
}

// DecodeSnapshot unwraps an envelope into state, refusing mismatched
// versions.
func DecodeSnapshot(raw []byte, state interface{}) error {
	var env snapshotEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != SnapshotVersion {
		return apperrors.ErrSnapshotVersion
	}
	if err := json.Unmarshal(env.Data, state); err != nil {
		return fmt.Errorf("unmarshal state: %w", err)
	}
	return nil
}

// FileSnapshotStore keeps one JSON file per slot under a base directory.
type FileSnapshotStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileSnapshotStore(dir string) *FileSnapshotStore {
	return &FileSnapshotStore{dir: dir}
}

func (s *FileSnapshotStore) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

func (s *FileSnapshotStore) Save(ctx context.Context, slot string, state interface{}) error {
	raw, err := EncodeSnapshot(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(s.path(slot), raw, 0644)
}

func (s *FileSnapshotStore) Load(ctx context.Context, slot string, state interface{}) error {
	s.mu.Lock()
	raw, err := os.ReadFile(s.path(slot))
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(raw) == 0 {
		return apperrors.ErrSnapshotNotFound
	}
	return DecodeSnapshot(raw, state)
}

func (s *FileSnapshotStore) Delete(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(slot))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
