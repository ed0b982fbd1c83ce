package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/core"
)

func newTestHistory(t *testing.T, retention time.Duration) *MemoryHistory {
	t.Helper()
	h := NewMemoryHistory(zap.NewNop(), retention, time.Hour)
	t.Cleanup(h.Stop)
	return h
}

func entryAt(uid uint32, processedAt time.Time) *core.HistoryEntry {
	return &core.HistoryEntry{
		UID:         uid,
		Subject:     "verification",
		From:        "alerts@example.com",
		Link:        "https://example.com/verify",
		ProcessedAt: processedAt,
	}
}

func TestMemoryHistory_RecordAndRecent(t *testing.T) {
	h := newTestHistory(t, time.Hour)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, h.Record(ctx, entryAt(1, now.Add(-2*time.Minute))))
	require.NoError(t, h.Record(ctx, entryAt(2, now.Add(-time.Minute))))
	require.NoError(t, h.Record(ctx, entryAt(3, now)))

	entries, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint32(3), entries[0].UID, "newest first")
	assert.Equal(t, uint32(1), entries[2].UID)
}

func TestMemoryHistory_RecentHonorsLimit(t *testing.T) {
	h := newTestHistory(t, time.Hour)
	ctx := context.Background()

	for uid := uint32(1); uid <= 5; uid++ {
		require.NoError(t, h.Record(ctx, entryAt(uid, time.Now())))
	}

	entries, err := h.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(5), entries[0].UID)
	assert.Equal(t, uint32(4), entries[1].UID)

	all, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryHistory_RecentEmpty(t *testing.T) {
	h := newTestHistory(t, time.Hour)

	entries, err := h.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryHistory_CleanupDropsExpiredEntries(t *testing.T) {
	h := newTestHistory(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, entryAt(1, time.Now().Add(-2*time.Hour))))
	require.NoError(t, h.Record(ctx, entryAt(2, time.Now())))

	require.NoError(t, h.Cleanup(ctx))

	entries, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(2), entries[0].UID)
}
