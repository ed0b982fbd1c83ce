package config

import (
	"fmt"
	"strings"
	"time"
)

// IMAPConfig represents the connection settings for the monitored mailbox
type IMAPConfig struct {
	Server      string
	Port        int
	Username    string
	Password    string
	Mailbox     string
	DialTimeout time.Duration
}

// Addr returns the host:port dial address for the IMAP server
func (c IMAPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

// MonitorConfig represents the polling loop settings
type MonitorConfig struct {
	Keyword      string
	PollInterval time.Duration
	CycleTimeout time.Duration
	Autostart    bool
}

// BrowserConfig represents the browser launcher settings
type BrowserConfig struct {
	Command string
}

// HistoryConfig represents the processing history journal settings
type HistoryConfig struct {
	Enabled          bool
	Type             string
	Retention        time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// GetIMAP returns the IMAP configuration
func (c *Config) GetIMAP() IMAPConfig {
	dialTimeout, err := c.GetDuration("imap.dial_timeout")
	if err != nil || dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}

	return IMAPConfig{
		Server:      c.GetString("imap.server"),
		Port:        c.GetInt("imap.port"),
		Username:    c.GetString("imap.username"),
		Password:    c.GetString("imap.password"),
		Mailbox:     c.GetString("imap.mailbox"),
		DialTimeout: dialTimeout,
	}
}

// GetMonitor returns the monitor configuration
func (c *Config) GetMonitor() MonitorConfig {
	pollInterval, err := c.GetDuration("monitor.poll_interval")
	if err != nil {
		pollInterval = 0
	}
	cycleTimeout, err := c.GetDuration("monitor.cycle_timeout")
	if err != nil || cycleTimeout <= 0 {
		cycleTimeout = 60 * time.Second
	}

	return MonitorConfig{
		Keyword:      c.GetString("monitor.keyword"),
		PollInterval: pollInterval,
		CycleTimeout: cycleTimeout,
		Autostart:    c.GetBool("monitor.autostart"),
	}
}

// GetBrowser returns the browser configuration
func (c *Config) GetBrowser() BrowserConfig {
	return BrowserConfig{
		Command: c.GetString("browser.command"),
	}
}

// GetHistory returns the history journal configuration
func (c *Config) GetHistory() HistoryConfig {
	retention, err := c.GetDuration("history.retention")
	if err != nil || retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	cleanupFreq, err := c.GetDuration("history.cleanup_frequency")
	if err != nil || cleanupFreq <= 0 {
		cleanupFreq = time.Hour
	}

	return HistoryConfig{
		Enabled:          c.GetBool("history.enabled"),
		Type:             c.GetString("history.type"),
		Retention:        retention,
		CleanupFrequency: cleanupFreq,
		SQLitePath:       c.GetString("history.sqlite_path"),
		MySQLDSN:         c.GetString("history.mysql_dsn"),
	}
}

// placeholders the setup docs use; treated the same as unset values
var placeholderValues = map[string]string{
	"imap.username":   "YOUR_EMAIL@gmail.com",
	"imap.password":   "YOUR_APP_PASSWORD",
	"monitor.keyword": "your_specific_keyword",
}

// Validate checks that every setting required to start the monitor is
// present and usable. It returns a single error listing all problems so
// a user can fix the configuration in one pass.
func (c *Config) Validate() error {
	var problems []string

	for _, key := range []string{"imap.username", "imap.password", "monitor.keyword"} {
		value := strings.TrimSpace(c.GetString(key))
		if value == "" || value == placeholderValues[key] {
			problems = append(problems, fmt.Sprintf("%s is not set", key))
		}
	}

	if c.GetString("imap.server") == "" {
		problems = append(problems, "imap.server is not set")
	}
	if port := c.GetInt("imap.port"); port <= 0 || port > 65535 {
		problems = append(problems, fmt.Sprintf("imap.port %d is out of range", port))
	}
	if c.GetString("imap.mailbox") == "" {
		problems = append(problems, "imap.mailbox is not set")
	}

	if interval, err := c.GetDuration("monitor.poll_interval"); err != nil {
		problems = append(problems, fmt.Sprintf("monitor.poll_interval is not a duration: %v", err))
	} else if interval <= 0 {
		problems = append(problems, "monitor.poll_interval must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
