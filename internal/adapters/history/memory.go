package history

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/core"
)

// MemoryHistory is an in-memory implementation of the HistoryRepository
// interface. Entries do not survive a restart.
type MemoryHistory struct {
	entries     []core.HistoryEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryHistory creates a new in-memory history journal
func NewMemoryHistory(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryHistory {
	h := &MemoryHistory{
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go h.startCleanupTask()

	return h
}

// Record appends a journal entry
func (h *MemoryHistory) Record(_ context.Context, entry *core.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, *entry)
	return nil
}

// Recent returns up to limit entries, newest first
func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]core.HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > len(h.entries) {
		limit = len(h.entries)
	}

	out := make([]core.HistoryEntry, 0, limit)
	for i := len(h.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.entries[i])
	}
	return out, nil
}

// Cleanup removes entries older than the retention window
func (h *MemoryHistory) Cleanup(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := time.Now().Add(-h.retention)
	kept := h.entries[:0]
	removed := 0

	for _, entry := range h.entries {
		if entry.ProcessedAt.After(cutoff) {
			kept = append(kept, entry)
		} else {
			removed++
		}
	}
	h.entries = kept

	if removed > 0 {
		h.logger.Debug("cleaned up expired history entries", zap.Int("removed", removed))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (h *MemoryHistory) startCleanupTask() {
	ticker := time.NewTicker(h.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.Cleanup(context.Background()); err != nil {
				h.logger.Error("failed to clean up history", zap.Error(err))
			}
		case <-h.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (h *MemoryHistory) Stop() {
	close(h.stopCh)
}
