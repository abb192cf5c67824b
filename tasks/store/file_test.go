package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haydenflinner/magicinvoke/tasks/fingerprint"
	"github.com/haydenflinner/magicinvoke/tasks/params"
	"github.com/haydenflinner/magicinvoke/tasks/store"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

func newTestEntry(fp fingerprint.Fingerprint, payload string) *store.Entry {
	return &store.Entry{
		Fingerprint: fp,
		Payload:     json.RawMessage(payload),
		StoredAt:    time.Now().UTC().Truncate(time.Second),
		Params:      params.Values{"count": float64(3)},
	}
}

func TestFileResultStore_SaveAndLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewFileResultStore(t.TempDir())
	entry := newTestEntry("abcd1234", `{"people":["ana","bo"]}`)

	require.NoError(t, s.Save(ctx, "tasks.get-people", entry))

	got, err := s.Load(ctx, "tasks.get-people", "abcd1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.Fingerprint, got.Fingerprint)
	assert.Equal(t, string(entry.Payload), string(got.Payload))
	assert.Assert(t, entry.StoredAt.Equal(got.StoredAt))
	assert.DeepEqual(t, entry.Params, got.Params)
}

func TestFileResultStore_LoadMissing(t *testing.T) {
	t.Parallel()
	s := store.NewFileResultStore(t.TempDir())

	got, err := s.Load(context.Background(), "tasks.get-people", "ffff")

	require.NoError(t, err)
	assert.Assert(t, got == nil)
}

func TestFileResultStore_DistinctFingerprintsDoNotCollide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewFileResultStore(t.TempDir())

	require.NoError(t, s.Save(ctx, "t", newTestEntry("aaaa", `1`)))
	require.NoError(t, s.Save(ctx, "t", newTestEntry("bbbb", `2`)))

	a, err := s.Load(ctx, "t", "aaaa")
	require.NoError(t, err)
	b, err := s.Load(ctx, "t", "bbbb")
	require.NoError(t, err)
	assert.Equal(t, `1`, string(a.Payload))
	assert.Equal(t, `2`, string(b.Payload))
}

func TestFileResultStore_OverwriteReplacesEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewFileResultStore(t.TempDir())

	require.NoError(t, s.Save(ctx, "t", newTestEntry("aaaa", `"old"`)))
	require.NoError(t, s.Save(ctx, "t", newTestEntry("aaaa", `"new"`)))

	got, err := s.Load(ctx, "t", "aaaa")
	require.NoError(t, err)
	assert.Equal(t, `"new"`, string(got.Payload))
}

func TestFileResultStore_CorruptEntryIsMiss(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	s := store.NewFileResultStore(root)
	require.NoError(t, s.Save(ctx, "t", newTestEntry("aaaa", `"ok"`)))

	// Stomp the entry's bytes on disk.
	entryPath := filepath.Join(root, "t", "aaaa.json")
	require.NoError(t, os.WriteFile(entryPath, []byte("{not json"), 0o644))

	got, err := s.Load(ctx, "t", "aaaa")
	require.NoError(t, err)
	assert.Assert(t, got == nil)

	// A fresh save recovers the entry.
	require.NoError(t, s.Save(ctx, "t", newTestEntry("aaaa", `"recovered"`)))
	got, err = s.Load(ctx, "t", "aaaa")
	require.NoError(t, err)
	assert.Equal(t, `"recovered"`, string(got.Payload))
}

func TestFileResultStore_MismatchedFingerprintIsMiss(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	s := store.NewFileResultStore(root)
	require.NoError(t, s.Save(ctx, "t", newTestEntry("aaaa", `"ok"`)))

	// Copy the valid entry over another fingerprint's slot.
	data, err := os.ReadFile(filepath.Join(root, "t", "aaaa.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "t", "bbbb.json"), data, 0o644))

	got, err := s.Load(ctx, "t", "bbbb")
	require.NoError(t, err)
	assert.Assert(t, got == nil)
}

func TestFileResultStore_Purge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := store.NewFileResultStore(t.TempDir())
	require.NoError(t, s.Save(ctx, "t", newTestEntry("aaaa", `1`)))
	require.NoError(t, s.Save(ctx, "other", newTestEntry("aaaa", `2`)))

	require.NoError(t, s.Purge(ctx, "t"))

	got, err := s.Load(ctx, "t", "aaaa")
	require.NoError(t, err)
	assert.Assert(t, got == nil)

	kept, err := s.Load(ctx, "other", "aaaa")
	require.NoError(t, err)
	assert.Assert(t, kept != nil)
}

func TestFileResultStore_IdentityIsSanitized(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	s := store.NewFileResultStore(root)

	require.NoError(t, s.Save(ctx, "../escape/attempt", newTestEntry("aaaa", `1`)))

	// The entry must land under the root, not beside it.
	got, err := s.Load(ctx, "../escape/attempt", "aaaa")
	require.NoError(t, err)
	require.NotNil(t, got)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}
