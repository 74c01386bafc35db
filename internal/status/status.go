// Package status provides a thread-safe snapshot of daemon-level state for
// the HTTP handlers: uptime and the running config. Alarm state and service
// connectivity are read live from the lifecycle and the platform client.
package status

import "time"

// Config contains daemon configuration for display.
type Config struct {
	Broker      string
	TopicPrefix string
	HTTPAddr    string
	AudioRef    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds the daemon's start time and config. Both are fixed at
// startup, so the Tracker is immutable and safe for concurrent reads.
type Tracker struct {
	start time.Time
	cfg   Config
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{start: startTime, cfg: cfg}
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		StartTime: t.start,
		Config:    t.cfg,
		Now:       time.Now(),
	}
}
