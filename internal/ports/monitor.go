package ports

import (
	"github.com/mikey/mail-link-monitor/internal/core"
)

// Monitor is the control surface's handle on the polling loop.
type Monitor interface {
	// Start begins polling; a no-op when already running
	Start()

	// Stop halts polling and blocks until the loop is idle; a no-op when
	// already idle
	Stop()

	// State returns the current run state
	State() core.RunState
}
