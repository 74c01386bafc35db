package alarm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hollis/wakeword/internal/metrics"
)

// DeliveryOptions selects how the platform service delivers the alarm.
type DeliveryOptions struct {
	Sound   bool
	Vibrate bool
	Notify  bool
}

// ScheduleRequest is an outbound schedule call to the platform service.
type ScheduleRequest struct {
	ID          string
	ArmID       string
	TriggerTime time.Time
	Payload     string
	AudioRef    string
	Delivery    DeliveryOptions
}

// Platform is the slice of the platform alarm service the lifecycle needs.
// Schedule has replace-by-id semantics; Stop is a no-op for unknown ids.
type Platform interface {
	Schedule(ctx context.Context, req ScheduleRequest) error
	Stop(ctx context.Context, id string) error
}

// RingingAlarm is one fired alarm in a ring event batch.
type RingingAlarm struct {
	ID          string
	TriggerTime time.Time
	Payload     string
}

// RingEvent is one emission of the platform's ringing-event stream. The
// batch may be empty and may contain alarms scheduled by other systems.
type RingEvent struct {
	Alarms []RingingAlarm
}

// Options configures a Lifecycle.
type Options struct {
	AudioRef string
	Delivery DeliveryOptions
	Now      func() time.Time // defaults to time.Now
	Logger   zerolog.Logger
}

// Lifecycle owns the single alarm slot. All state lives behind one mutex;
// Arm, Cancel, OnRing, and Dismiss are the only mutators, and each runs as
// one atomic step. The wait for the trigger instant is entirely the platform
// service's job, so nothing here blocks for the duration of the alarm.
type Lifecycle struct {
	platform Platform
	audioRef string
	delivery DeliveryOptions
	now      func() time.Time
	log      zerolog.Logger

	mu      sync.Mutex
	state   State
	record  *Record
	decoded *Payload // payload of the ring event that moved us to Ringing
}

// New creates an idle Lifecycle backed by the given platform service.
func New(p Platform, opts Options) *Lifecycle {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{
		platform: p,
		audioRef: opts.AudioRef,
		delivery: opts.Delivery,
		now:      now,
		log:      opts.Logger,
		state:    StateIdle,
	}
}

// Arm schedules the slot to fire at the next occurrence of tod. The message
// is trimmed and must be non-empty. A prior Scheduled record is replaced by
// the platform's replace-by-id semantics; no intermediate Idle state is
// observable. On platform rejection the state is unchanged and the error
// wraps ErrServiceRejected.
func (l *Lifecycle) Arm(ctx context.Context, tod TimeOfDay, message string) (ScheduledInfo, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ScheduledInfo{}, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	trigger := NextOccurrence(tod, l.now())
	rec := &Record{
		ID:          SlotID,
		ArmID:       uuid.NewString(),
		TriggerTime: trigger,
		Payload:     Payload{Message: message},
	}

	req := ScheduleRequest{
		ID:          rec.ID,
		ArmID:       rec.ArmID,
		TriggerTime: rec.TriggerTime,
		Payload:     EncodePayload(rec.Payload),
		AudioRef:    l.audioRef,
		Delivery:    l.delivery,
	}
	if err := l.platform.Schedule(ctx, req); err != nil {
		metrics.ArmFailures.Inc()
		l.log.Warn().Err(err).Str("arm_id", rec.ArmID).Msg("platform rejected schedule")
		return ScheduledInfo{}, fmt.Errorf("%w: %v", ErrServiceRejected, err)
	}

	l.state = StateScheduled
	l.record = rec
	l.decoded = nil
	metrics.Arms.Inc()
	l.log.Info().
		Str("arm_id", rec.ArmID).
		Time("trigger", rec.TriggerTime).
		Msg("alarm armed")
	return ScheduledInfo{TriggerTime: rec.TriggerTime, ArmID: rec.ArmID}, nil
}

// Cancel stops the slot and returns to Idle. It is valid from Scheduled and
// also from Ringing, where it acts as a force-dismiss that bypasses the
// dismissal gate (the cancel control stays reachable while ringing so a
// corrupted payload can never strand the user). Calling from Idle is a
// no-op. A platform stop failure leaves the state unchanged and returns an
// error wrapping ErrStopFailed.
func (l *Lifecycle) Cancel(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateIdle {
		return nil
	}
	if err := l.platform.Stop(ctx, SlotID); err != nil {
		l.log.Warn().Err(err).Msg("platform stop failed during cancel")
		return fmt.Errorf("%w: %v", ErrStopFailed, err)
	}
	l.log.Info().Str("arm_id", l.armID()).Str("from", string(l.state)).Msg("alarm cancelled")
	l.clear()
	metrics.Cancels.Inc()
	return nil
}

// OnRing consumes one emission of the platform's ringing-event stream.
// Duplicate events while already Ringing are ignored, as are events arriving
// when the slot is not Scheduled, in particular stale events delivered
// after a cancel has committed. The batch is matched by the fixed slot id;
// if no entry matches, the first alarm in the batch is honored as a
// documented leniency (warned and counted, since it can mask id mismatches).
func (l *Lifecycle) OnRing(ev RingEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	metrics.RingEvents.Inc()

	if l.state == StateRinging {
		return
	}
	if l.state != StateScheduled || l.record == nil {
		l.log.Debug().Int("batch", len(ev.Alarms)).Msg("ignoring ring event with no scheduled alarm")
		return
	}
	if len(ev.Alarms) == 0 {
		return
	}

	matched := ev.Alarms[0]
	exact := false
	for _, a := range ev.Alarms {
		if a.ID == SlotID {
			matched = a
			exact = true
			break
		}
	}
	if !exact {
		metrics.RingFallback.Inc()
		l.log.Warn().
			Str("fallback_id", matched.ID).
			Int("batch", len(ev.Alarms)).
			Msg("no ring event matched the alarm slot id, using first in batch")
	}

	l.state = StateRinging
	l.decoded = DecodePayload(matched.Payload)
	if l.decoded == nil {
		l.log.Warn().Str("arm_id", l.record.ArmID).Msg("ringing payload failed to decode, dismissal gate will accept any non-empty input")
	}
	l.log.Info().Str("arm_id", l.record.ArmID).Msg("alarm ringing")
}

// Dismiss stops the ringing alarm and returns to Idle. The caller is
// responsible for gating it behind MatchTyped; Dismiss itself only performs
// the stop. Valid only from Ringing. A platform stop failure leaves the
// state at Ringing and returns an error wrapping ErrStopFailed.
func (l *Lifecycle) Dismiss(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRinging {
		return ErrNotRinging
	}
	return l.dismissLocked(ctx)
}

// DismissIfMatch runs the dismissal gate and the stop as one atomic step,
// so a cancel or re-arm that slips in between a separate MatchTyped call
// and Dismiss can never dismiss a new ring cycle against the old cycle's
// message. Returns ErrNotRinging outside the Ringing state and ErrNoMatch
// when the gate rejects the typed text.
func (l *Lifecycle) DismissIfMatch(ctx context.Context, typed string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRinging {
		return ErrNotRinging
	}
	if !Matches(l.decoded, typed) {
		return ErrNoMatch
	}
	return l.dismissLocked(ctx)
}

// dismissLocked performs the platform stop and clears the slot. Caller
// holds l.mu and has verified the Ringing state.
func (l *Lifecycle) dismissLocked(ctx context.Context) error {
	if err := l.platform.Stop(ctx, SlotID); err != nil {
		l.log.Warn().Err(err).Msg("platform stop failed during dismiss")
		return fmt.Errorf("%w: %v", ErrStopFailed, err)
	}
	l.log.Info().Str("arm_id", l.armID()).Msg("alarm dismissed")
	l.clear()
	metrics.Dismissals.Inc()
	return nil
}

// Run consumes ring events until ctx is done or the channel closes. It is
// the only reader of the stream; teardown is unconditional on ctx end.
func (l *Lifecycle) Run(ctx context.Context, rings <-chan RingEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-rings:
			if !ok {
				return
			}
			l.OnRing(ev)
		}
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Scheduled returns the trigger instant of the armed alarm, if any.
func (l *Lifecycle) Scheduled() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.record == nil {
		return time.Time{}, false
	}
	return l.record.TriggerTime, true
}

// Message returns the decoded secret message for the current slot, if any.
// While Ringing this is the message decoded from the ring event payload,
// which may be absent when the payload was corrupted in transit.
func (l *Lifecycle) Message() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case StateRinging:
		if l.decoded == nil {
			return "", false
		}
		return l.decoded.Message, true
	case StateScheduled:
		return l.record.Payload.Message, true
	default:
		return "", false
	}
}

// MatchTyped runs the dismissal gate against the ringing payload. Always
// false outside the Ringing state. Safe to call on every keystroke.
func (l *Lifecycle) MatchTyped(typed string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateRinging {
		return false
	}
	return Matches(l.decoded, typed)
}

// clear resets the slot to Idle. Caller holds l.mu.
func (l *Lifecycle) clear() {
	l.state = StateIdle
	l.record = nil
	l.decoded = nil
}

// armID returns the current record's arm id for logging. Caller holds l.mu.
func (l *Lifecycle) armID() string {
	if l.record == nil {
		return ""
	}
	return l.record.ArmID
}
