package platform

import (
	"context"

	"github.com/hollis/wakeword/internal/alarm"
)

// Fake records platform calls for test assertions and lets tests push ring
// events into the stream.
type Fake struct {
	// Scheduled contains all schedule requests received, in order.
	Scheduled []alarm.ScheduleRequest

	// Stopped contains the ids of all stop requests received, in order.
	Stopped []string

	// ScheduleError, if set, is returned by Schedule.
	ScheduleError error

	// StopError, if set, is returned by Stop.
	StopError error

	// Connected controls IsConnected.
	Connected bool

	// Closed tracks whether Close was called.
	Closed bool

	rings chan alarm.RingEvent
}

// NewFake creates a Fake with a buffered ring stream.
func NewFake() *Fake {
	return &Fake{rings: make(chan alarm.RingEvent, ringBuffer)}
}

// Schedule records the request.
func (f *Fake) Schedule(_ context.Context, req alarm.ScheduleRequest) error {
	if f.ScheduleError != nil {
		return f.ScheduleError
	}
	f.Scheduled = append(f.Scheduled, req)
	return nil
}

// Stop records the id.
func (f *Fake) Stop(_ context.Context, id string) error {
	if f.StopError != nil {
		return f.StopError
	}
	f.Stopped = append(f.Stopped, id)
	return nil
}

// Rings returns the fake ring stream.
func (f *Fake) Rings() <-chan alarm.RingEvent {
	return f.rings
}

// Ring pushes a batch onto the ring stream, as the platform service would.
func (f *Fake) Ring(alarms ...alarm.RingingAlarm) {
	f.rings <- alarm.RingEvent{Alarms: alarms}
}

// IsConnected reports the configured connection state.
func (f *Fake) IsConnected() bool {
	return f.Connected
}

// Close marks the fake as closed and closes the ring stream.
func (f *Fake) Close() error {
	f.Closed = true
	close(f.rings)
	return nil
}

// LastScheduled returns the most recent schedule request, or nil.
func (f *Fake) LastScheduled() *alarm.ScheduleRequest {
	if len(f.Scheduled) == 0 {
		return nil
	}
	return &f.Scheduled[len(f.Scheduled)-1]
}
