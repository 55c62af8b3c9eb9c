package updater

import (
	"github.com/rs/zerolog"

	"github.com/close2/ota-common/flash"
)

// Config holds the updater configuration.
type Config struct {
	// Logger receives structured progress and error logs.
	Logger zerolog.Logger

	// Watchdog is called after every flash scan chunk during long
	// operations (checksum compute, snapshot copy) to keep the platform
	// watchdog fed. Optional.
	Watchdog WatchdogFunc

	// Progress is called as file data is written. Optional.
	Progress ProgressFunc

	// Layout is the flash geometry of the part.
	Layout flash.Layout
}

func defaultConfig() Config {
	return Config{
		Logger: zerolog.Nop(),
		Layout: flash.DefaultLayout(),
	}
}

// Option is a functional option for configuring the Updater.
type Option func(*Config)

// WithLogger sets the logger for update operations.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

// WithWatchdog sets the watchdog keep-alive callback. Long flash scans
// call it at fixed byte-count intervals; without it a hardware watchdog
// would reset the device mid-scan.
func WithWatchdog(feed WatchdogFunc) Option {
	return func(c *Config) {
		c.Watchdog = feed
	}
}

// WithProgress sets a callback reporting per-file write progress.
func WithProgress(callback ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = callback
	}
}

// WithLayout overrides the default flash geometry.
func WithLayout(layout flash.Layout) Option {
	return func(c *Config) {
		c.Layout = layout
	}
}
