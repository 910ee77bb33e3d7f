package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tab-sweeper/domain/model"
)

// FileSnapshotStore persists the video snapshot as a single JSON file. It is
// the fallback when no Redis instance is configured; the file plays the role
// of the one durable key the snapshot lives under.
type FileSnapshotStore struct {
	path string
}

func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

func (s *FileSnapshotStore) Load(ctx context.Context) (model.VideoSnapshot, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return model.VideoSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load video snapshot: %w", err)
	}
	var snapshot model.VideoSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode video snapshot: %w", err)
	}
	return snapshot, nil
}

// Save writes the snapshot to a temp file and renames it into place, so a
// crash mid-write never corrupts the previous state.
func (s *FileSnapshotStore) Save(ctx context.Context, snapshot model.VideoSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode video snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write video snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("save video snapshot: %w", err)
	}
	return nil
}

func (s *FileSnapshotStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear video snapshot: %w", err)
	}
	return nil
}
