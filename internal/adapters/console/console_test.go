package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/core"
)

type fakeMonitor struct {
	state  core.RunState
	starts int
	stops  int
}

func (m *fakeMonitor) Start() {
	m.starts++
	m.state = core.StateRunning
}

func (m *fakeMonitor) Stop() {
	m.stops++
	m.state = core.StateIdle
}

func (m *fakeMonitor) State() core.RunState { return m.state }

type stubHistory struct {
	entries []core.HistoryEntry
}

func (h *stubHistory) Record(_ context.Context, entry *core.HistoryEntry) error {
	h.entries = append(h.entries, *entry)
	return nil
}

func (h *stubHistory) Recent(_ context.Context, limit int) ([]core.HistoryEntry, error) {
	if limit > len(h.entries) {
		limit = len(h.entries)
	}
	return h.entries[:limit], nil
}

func (h *stubHistory) Cleanup(_ context.Context) error { return nil }

func runConsole(t *testing.T, monitor *fakeMonitor, history core.HistoryRepository, input string) string {
	t.Helper()

	var out bytes.Buffer
	cons := New(monitor, history, zap.NewNop(), strings.NewReader(input), &out)

	err := cons.Run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestConsole_StartStopStatus(t *testing.T) {
	monitor := &fakeMonitor{}

	out := runConsole(t, monitor, nil, "status\nstart\nstatus\nstop\nquit\n")

	assert.Equal(t, 1, monitor.starts)
	assert.Equal(t, 1, monitor.stops)
	assert.Contains(t, out, "monitor is idle")
	assert.Contains(t, out, "monitor is running")
}

func TestConsole_UnknownCommand(t *testing.T) {
	out := runConsole(t, &fakeMonitor{}, nil, "frobnicate\nquit\n")

	assert.Contains(t, out, `unknown command "frobnicate"`)
}

func TestConsole_BlankLinesIgnored(t *testing.T) {
	monitor := &fakeMonitor{}

	out := runConsole(t, monitor, nil, "\n   \nquit\n")

	assert.Zero(t, monitor.starts)
	assert.NotContains(t, out, "unknown command")
}

func TestConsole_EOFEndsLoop(t *testing.T) {
	out := runConsole(t, &fakeMonitor{}, nil, "status\n")

	assert.Contains(t, out, "monitor is idle")
}

func TestConsole_HistoryDisabled(t *testing.T) {
	out := runConsole(t, &fakeMonitor{}, nil, "history\nquit\n")

	assert.Contains(t, out, "history journal is disabled")
}

func TestConsole_HistoryEmpty(t *testing.T) {
	out := runConsole(t, &fakeMonitor{}, &stubHistory{}, "history\nquit\n")

	assert.Contains(t, out, "no processed messages yet")
}

func TestConsole_HistoryListing(t *testing.T) {
	history := &stubHistory{entries: []core.HistoryEntry{
		{
			UID:         42,
			Subject:     "verify your account",
			Link:        "https://example.com/verify",
			ProcessedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
		{
			UID:         43,
			Subject:     "keyword without link",
			ProcessedAt: time.Date(2026, 8, 30, 12, 5, 0, 0, time.UTC),
		},
	}}

	out := runConsole(t, &fakeMonitor{}, history, "history 2\nquit\n")

	assert.Contains(t, out, "uid=42")
	assert.Contains(t, out, "https://example.com/verify")
	assert.Contains(t, out, "uid=43")
	assert.Contains(t, out, "(no link)")
}

func TestConsole_ReaderGoroutineExitsAfterCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	reader, writer := io.Pipe()
	var out bytes.Buffer
	cons := New(&fakeMonitor{}, nil, zap.NewNop(), reader, &out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cons.Run(ctx) }()

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// A line arriving after shutdown must not strand the reader
	// goroutine on its send.
	go func() {
		_, _ = io.WriteString(writer, "status\n")
		_ = writer.Close()
	}()
}

func TestConsole_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A pipe keeps the input open so only the cancellation can end the loop.
	reader, writer := io.Pipe()
	defer writer.Close()

	var out bytes.Buffer
	cons := New(&fakeMonitor{}, nil, zap.NewNop(), reader, &out)

	err := cons.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
