// Package sysd reports daemon readiness to systemd, when run under it.
// SdNotify is a no-op (returns false, nil) outside of a systemd service unit,
// so callers need no environment detection of their own.
package sysd

import (
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Ready signals READY=1 once both watcher bus names have been resolved and
// the object path is registered.
func Ready() {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		slog.Debug("sd_notify READY failed", "error", err)
		return
	}
	if sent {
		slog.Debug("sd_notify READY delivered")
	}
}

// Stopping signals STOPPING=1 at the start of graceful shutdown.
func Stopping() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		slog.Debug("sd_notify STOPPING failed", "error", err)
	}
}

// WatchdogInterval returns the watchdog ping interval systemd configured via
// WatchdogSec, halved per sd_watchdog_enabled's documented convention, or
// zero if no watchdog is configured.
func WatchdogInterval() time.Duration {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return 0
	}
	return interval / 2
}

// Ping sends a single WATCHDOG=1 keepalive.
func Ping() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
		slog.Debug("sd_notify WATCHDOG failed", "error", err)
	}
}
