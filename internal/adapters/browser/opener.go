package browser

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// Opener launches URLs in the user's default browser via the platform
// opener command. A configured command overrides the per-OS default.
type Opener struct {
	command string
	logger  *zap.Logger
}

// NewOpener creates a new browser opener. command may be empty, in which
// case the platform default is used.
func NewOpener(command string, logger *zap.Logger) *Opener {
	return &Opener{
		command: command,
		logger:  logger,
	}
}

// OpenURL validates the URL and hands it to the opener command. The
// command is started and not waited on; failures to launch are returned
// so the caller can log them, but nothing downstream depends on the
// browser actually rendering the page.
func (o *Opener) OpenURL(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}

	name, args, err := o.launcher()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, name, append(args, rawURL)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}

	o.logger.Debug("browser launch requested",
		zap.String("command", name),
		zap.String("url", rawURL))

	// Reap the child once it exits; the outcome is irrelevant.
	go func() { _ = cmd.Wait() }()

	return nil
}

// launcher picks the opener command for the current platform.
func (o *Opener) launcher() (string, []string, error) {
	if o.command != "" {
		fields := strings.Fields(o.command)
		return fields[0], fields[1:], nil
	}

	switch runtime.GOOS {
	case "darwin":
		return "open", nil, nil
	case "linux":
		return "xdg-open", nil, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}, nil
	default:
		return "", nil, fmt.Errorf("no browser opener for platform %s", runtime.GOOS)
	}
}

// validateURL accepts only absolute http/https URLs; anything else never
// reaches the opener command.
func validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("unsupported URL scheme: %q", parsed.Scheme)
	}
}
