// Package alarm contains the pure logic for the single-slot alarm:
// next-occurrence computation, the payload codec, the dismissal gate, and
// the lifecycle state machine. The platform service is only reached through
// the Platform interface, and time is always injectable via time.Time
// parameters or a now func.
package alarm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SlotID is the fixed identifier for the single alarm slot. The platform
// service replaces any record scheduled under the same id.
const SlotID = "wakeword-alarm"

// State represents the lifecycle state of the alarm slot.
type State string

const (
	StateIdle      State = "IDLE"
	StateScheduled State = "SCHEDULED"
	StateRinging   State = "RINGING"
)

// TimeOfDay is a wall-clock hour and minute, independent of date and zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour). Leading zeros are optional.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// String returns the zero-padded "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Payload is the secret message carried through the platform alarm record.
// Immutable once constructed; Message is always non-empty for payloads built
// by this package.
type Payload struct {
	Message string `json:"message"`
}

// Record is the single active alarm slot as this daemon sees it.
type Record struct {
	ID          string
	ArmID       string // uuid minted per arm, for log correlation
	TriggerTime time.Time
	Payload     Payload
}

// ScheduledInfo is what a successful Arm reports back to the caller.
type ScheduledInfo struct {
	TriggerTime time.Time
	ArmID       string
}

// Typed errors returned by lifecycle operations.
var (
	// ErrInvalidInput: missing time of day or empty message. Returned
	// before any platform call is made.
	ErrInvalidInput = errors.New("alarm: invalid arm input")

	// ErrServiceRejected: the platform service declined to schedule.
	// Lifecycle state is unchanged.
	ErrServiceRejected = errors.New("alarm: platform rejected schedule")

	// ErrStopFailed: the platform service failed to stop the alarm. The
	// dismissal or cancel did not commit.
	ErrStopFailed = errors.New("alarm: platform stop failed")

	// ErrNotRinging: dismiss was called outside the Ringing state.
	ErrNotRinging = errors.New("alarm: not ringing")

	// ErrNoMatch: the typed text did not pass the dismissal gate.
	ErrNoMatch = errors.New("alarm: typed text does not match")
)
