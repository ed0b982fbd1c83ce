package core

import (
	"time"
)

// BodyPart is one decoded text block of a message. Parts are ordered the
// way they should be scanned: plaintext before HTML.
type BodyPart struct {
	ContentType string
	Text        string
}

// Message is a fetched mail message reduced to what the monitor needs.
// It lives for one poll cycle and is discarded afterwards; the server's
// seen flag is the only state carried across cycles.
type Message struct {
	UID     uint32
	Subject string
	From    string
	Parts   []BodyPart
}

// CycleSummary reports what a single poll cycle did.
type CycleSummary struct {
	Found      int
	Processed  int
	Linked     int
	Skipped    int
	Failed     int
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// HistoryEntry is one line of the processing journal: a message the
// monitor confirmed as a keyword match in some cycle.
type HistoryEntry struct {
	UID         uint32
	Subject     string
	From        string
	Link        string
	ProcessedAt time.Time
}

// RunState is the controller state machine value.
type RunState int32

const (
	StateIdle RunState = iota
	StateRunning
	StateStopping
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
