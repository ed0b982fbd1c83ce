package mailbox

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCloser struct {
	closes atomic.Int32
	closed chan struct{}
}

func newRecordingCloser() *recordingCloser {
	return &recordingCloser{closed: make(chan struct{})}
}

func (c *recordingCloser) Close() error {
	if c.closes.Add(1) == 1 {
		close(c.closed)
	}
	return nil
}

func TestCloseOnCancel_CancelClosesConnection(t *testing.T) {
	conn := newRecordingCloser()
	ctx, cancel := context.WithCancel(context.Background())
	released := make(chan struct{})

	go closeOnCancel(ctx, conn, released)
	cancel()

	select {
	case <-conn.closed:
	case <-time.After(time.Second):
		t.Fatal("cancellation did not close the connection")
	}
}

func TestCloseOnCancel_ReleaseDetachesWatcher(t *testing.T) {
	conn := newRecordingCloser()
	ctx, cancel := context.WithCancel(context.Background())
	released := make(chan struct{})

	go closeOnCancel(ctx, conn, released)
	close(released)
	cancel()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, conn.closes.Load(), "a released session owns its connection")
}

func TestSessionReleaseIsIdempotent(t *testing.T) {
	s := &session{released: make(chan struct{})}

	s.release()
	require.NotPanics(t, s.release)

	select {
	case <-s.released:
	default:
		t.Fatal("release did not signal the watcher")
	}
}
