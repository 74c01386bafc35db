// Package platform is the boundary with the external platform alarm service.
// The service owns the actual timer: it persists scheduled alarms, fires them
// at the trigger instant, and pushes ringing events back. This package only
// carries requests out and ring events in; it implements alarm.Platform.
package platform

import (
	"encoding/json"
	"time"

	"github.com/hollis/wakeword/internal/alarm"
)

// Topic suffixes under the configured prefix (default "alarm/svc").
const (
	TopicSchedule = "schedule"
	TopicStop     = "stop"
	TopicRinging  = "ringing"
)

// ConnectionStatus reports whether the service connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// scheduleFrame is the wire form of a schedule request.
type scheduleFrame struct {
	Schedule scheduleInner `json:"schedule"`
}

type scheduleInner struct {
	ID       string        `json:"id"`
	ArmID    string        `json:"arm_id"`
	Trigger  string        `json:"trigger"`
	Payload  string        `json:"payload"`
	AudioRef string        `json:"audio_ref,omitempty"`
	Delivery deliveryInner `json:"delivery"`
}

type deliveryInner struct {
	Sound   bool `json:"sound"`
	Vibrate bool `json:"vibrate"`
	Notify  bool `json:"notify"`
}

// stopFrame is the wire form of a stop request.
type stopFrame struct {
	Stop stopInner `json:"stop"`
}

type stopInner struct {
	ID string `json:"id"`
}

// ringFrame is the wire form of a ringing event batch.
type ringFrame struct {
	Ringing ringInner `json:"ringing"`
}

type ringInner struct {
	Alarms []ringAlarm `json:"alarms"`
}

type ringAlarm struct {
	ID      string `json:"id"`
	Trigger string `json:"trigger"`
	Payload string `json:"payload"`
}

// FormatSchedule creates the JSON frame for a schedule request.
func FormatSchedule(req alarm.ScheduleRequest) ([]byte, error) {
	frame := scheduleFrame{
		Schedule: scheduleInner{
			ID:       req.ID,
			ArmID:    req.ArmID,
			Trigger:  req.TriggerTime.UTC().Format(time.RFC3339),
			Payload:  req.Payload,
			AudioRef: req.AudioRef,
			Delivery: deliveryInner{
				Sound:   req.Delivery.Sound,
				Vibrate: req.Delivery.Vibrate,
				Notify:  req.Delivery.Notify,
			},
		},
	}
	return json.Marshal(frame)
}

// FormatStop creates the JSON frame for a stop request.
func FormatStop(id string) ([]byte, error) {
	return json.Marshal(stopFrame{Stop: stopInner{ID: id}})
}

// ParseRing parses a ringing frame into an event. Alarms with an unparsable
// trigger timestamp keep a zero time rather than failing the batch.
func ParseRing(data []byte) (alarm.RingEvent, error) {
	var frame ringFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return alarm.RingEvent{}, err
	}
	ev := alarm.RingEvent{Alarms: make([]alarm.RingingAlarm, 0, len(frame.Ringing.Alarms))}
	for _, a := range frame.Ringing.Alarms {
		t, _ := time.Parse(time.RFC3339, a.Trigger)
		ev.Alarms = append(ev.Alarms, alarm.RingingAlarm{
			ID:          a.ID,
			TriggerTime: t,
			Payload:     a.Payload,
		})
	}
	return ev, nil
}
