package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshotPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestFileSnapshotStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		s := NewFileSnapshotStore(t.TempDir())

		in := snapshotPayload{Name: "planner", Count: 7}
		require.NoError(t, s.Save(ctx, "slot-a", &in))

		var out snapshotPayload
		require.NoError(t, s.Load(ctx, "slot-a", &out))
		assert.Equal(t, in, out)
	})

	t.Run("missing slot", func(t *testing.T) {
		s := NewFileSnapshotStore(t.TempDir())

		var out snapshotPayload
		err := s.Load(ctx, "nothing-here", &out)
		require.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)
	})

	t.Run("version mismatch", func(t *testing.T) {
		dir := t.TempDir()
		s := NewFileSnapshotStore(dir)

		stale, err := json.Marshal(map[string]interface{}{
			"version":  SnapshotVersion + 1,
			"saved_at": time.Now().UTC(),
			"data":     snapshotPayload{Name: "old"},
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.json"), stale, 0644))

		var out snapshotPayload
		err = s.Load(ctx, "stale", &out)
		require.ErrorIs(t, err, apperrors.ErrSnapshotVersion)
	})

	t.Run("delete", func(t *testing.T) {
		s := NewFileSnapshotStore(t.TempDir())

		in := snapshotPayload{Name: "gone"}
		require.NoError(t, s.Save(ctx, "slot-b", &in))
		require.NoError(t, s.Delete(ctx, "slot-b"))

		var out snapshotPayload
		require.ErrorIs(t, s.Load(ctx, "slot-b", &out), apperrors.ErrSnapshotNotFound)

		// Deleting a missing slot is not an error.
		require.NoError(t, s.Delete(ctx, "slot-b"))
	})

	t.Run("save overwrites", func(t *testing.T) {
		s := NewFileSnapshotStore(t.TempDir())

		first := snapshotPayload{Name: "v1", Count: 1}
		second := snapshotPayload{Name: "v2", Count: 2}
		require.NoError(t, s.Save(ctx, "slot-c", &first))
		require.NoError(t, s.Save(ctx, "slot-c", &second))

		var out snapshotPayload
		require.NoError(t, s.Load(ctx, "slot-c", &out))
		assert.Equal(t, second, out)
	})
}
