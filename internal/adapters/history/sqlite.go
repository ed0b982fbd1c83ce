package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/core"
)

// SQLiteHistory is a SQLite implementation of the HistoryRepository
// interface. The journal survives restarts, which lets a user audit
// which links the monitor opened while they were away.
type SQLiteHistory struct {
	db          *sql.DB
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteHistory creates a new SQLite-backed history journal
func NewSQLiteHistory(dbPath string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS link_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid INTEGER,
			subject TEXT,
			sender TEXT,
			link TEXT,
			processed_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Index for retention cleanup and newest-first reads
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_processed_at ON link_history(processed_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	h := &SQLiteHistory{
		db:          db,
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go h.startCleanupTask()

	return h, nil
}

// Record appends a journal entry
func (h *SQLiteHistory) Record(ctx context.Context, entry *core.HistoryEntry) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO link_history (uid, subject, sender, link, processed_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.UID, entry.Subject, entry.From, entry.Link, entry.ProcessedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (h *SQLiteHistory) Recent(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT uid, subject, sender, link, processed_at
		FROM link_history
		ORDER BY processed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var entry core.HistoryEntry
		var processedAt string
		if err := rows.Scan(&entry.UID, &entry.Subject, &entry.From, &entry.Link, &processedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, processedAt); err == nil {
			entry.ProcessedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Cleanup removes entries older than the retention window
func (h *SQLiteHistory) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-h.retention).Format(time.RFC3339)

	result, err := h.db.ExecContext(ctx, `
		DELETE FROM link_history
		WHERE processed_at <= ?
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up history: %w", err)
	}

	if removed, err := result.RowsAffected(); err == nil && removed > 0 {
		h.logger.Debug("cleaned up expired history entries", zap.Int64("removed", removed))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (h *SQLiteHistory) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database
func (h *SQLiteHistory) Stop() {
	close(h.stopCh)
	if err := h.db.Close(); err != nil {
		h.logger.Error("failed to close history database", zap.Error(err))
	}
}
