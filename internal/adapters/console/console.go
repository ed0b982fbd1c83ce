package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/core"
	"github.com/mikey/mail-link-monitor/internal/ports"
)

// Console is the command-line control surface: a small read-eval loop
// that starts and stops the monitor and shows its state and history.
// It owns no polling logic; everything goes through the Monitor port.
type Console struct {
	monitor ports.Monitor
	history core.HistoryRepository
	logger  *zap.Logger
	in      io.Reader
	out     io.Writer
}

// New creates a new console bound to the given reader and writer.
// history may be nil when the journal is disabled.
func New(monitor ports.Monitor, history core.HistoryRepository, logger *zap.Logger, in io.Reader, out io.Writer) *Console {
	return &Console{
		monitor: monitor,
		history: history,
		logger:  logger,
		in:      in,
		out:     out,
	}
}

// Run reads commands until quit, EOF or context cancellation. It returns
// nil on a clean quit.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, `mail-link-monitor console; type "help" for commands`)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.dispatch(ctx, line); quit {
				return nil
			}
		}
	}
}

func (c *Console) dispatch(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "start":
		c.monitor.Start()
		fmt.Fprintf(c.out, "monitor is %s\n", c.monitor.State())
	case "stop":
		c.monitor.Stop()
		fmt.Fprintf(c.out, "monitor is %s\n", c.monitor.State())
	case "status":
		fmt.Fprintf(c.out, "monitor is %s\n", c.monitor.State())
	case "history":
		c.printHistory(ctx, fields[1:])
	case "help":
		fmt.Fprintln(c.out, "commands: start, stop, status, history [n], help, quit")
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(c.out, "unknown command %q; type \"help\" for commands\n", fields[0])
	}
	return false
}

func (c *Console) printHistory(ctx context.Context, args []string) {
	if c.history == nil {
		fmt.Fprintln(c.out, "history journal is disabled")
		return
	}

	limit := 10
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := c.history.Recent(ctx, limit)
	if err != nil {
		c.logger.Error("failed to read history", zap.Error(err))
		fmt.Fprintf(c.out, "failed to read history: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "no processed messages yet")
		return
	}

	for _, entry := range entries {
		link := entry.Link
		if link == "" {
			link = "(no link)"
		}
		fmt.Fprintf(c.out, "%s  uid=%d  %s  %s\n",
			entry.ProcessedAt.Format("2006-01-02 15:04:05"),
			entry.UID,
			entry.Subject,
			link)
	}
}
