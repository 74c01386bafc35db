package status

import (
	"testing"
	"time"
)

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	s := Snapshot{StartTime: start, Now: start.Add(90 * time.Second)}
	if got := s.Uptime(); got != 90*time.Second {
		t.Errorf("expected uptime 90s, got %v", got)
	}
}

func TestTrackerSnapshot(t *testing.T) {
	start := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{Broker: "tcp://broker.example:1883"})

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("unexpected start time %v", snap.StartTime)
	}
	if snap.Config.Broker != "tcp://broker.example:1883" {
		t.Errorf("unexpected broker %q", snap.Config.Broker)
	}
}

func TestSnapshotNowIsFresh(t *testing.T) {
	tr := NewTracker(time.Now().Add(-time.Hour), Config{})
	snap := tr.Snapshot()
	if snap.Now.IsZero() {
		t.Error("Now should be set by Snapshot")
	}
	if snap.Uptime() < time.Hour {
		t.Errorf("expected at least an hour of uptime, got %v", snap.Uptime())
	}
}
