package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/core"
)

// MySQLHistory is a MySQL implementation of the HistoryRepository
// interface, for setups that already run a database server.
type MySQLHistory struct {
	db          *sql.DB
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLHistory creates a new MySQL-backed history journal
func NewMySQLHistory(dsn string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*MySQLHistory, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS link_history (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			uid INT UNSIGNED,
			subject TEXT,
			sender VARCHAR(255),
			link TEXT,
			processed_at TIMESTAMP,
			INDEX idx_processed_at (processed_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	h := &MySQLHistory{
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
func (h *MySQLHistory) Record(ctx context.Context, entry *core.HistoryEntry) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO link_history (uid, subject, sender, link, processed_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.UID, entry.Subject, entry.From, entry.Link, entry.ProcessedAt)

	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (h *MySQLHistory) Recent(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
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
		if err := rows.Scan(&entry.UID, &entry.Subject, &entry.From, &entry.Link, &entry.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Cleanup removes entries older than the retention window
func (h *MySQLHistory) Cleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-h.retention)

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
func (h *MySQLHistory) startCleanupTask() {
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
func (h *MySQLHistory) Stop() {
	close(h.stopCh)
	if err := h.db.Close(); err != nil {
		h.logger.Error("failed to close history database", zap.Error(err))
	}
}
