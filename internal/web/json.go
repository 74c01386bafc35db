package web

import (
	"encoding/json"
	"time"

	"github.com/hollis/wakeword/internal/alarm"
	"github.com/hollis/wakeword/internal/status"
)

const timeFormat = time.RFC3339

// view collects everything the status renderers need: the daemon snapshot
// plus live reads of the alarm state and the platform connection. The
// connection is read per request so the indicator tracks broker outages and
// paho's automatic reconnects instead of freezing at its startup value.
type view struct {
	snap      status.Snapshot
	state     alarm.State
	trigger   time.Time
	hasTrig   bool
	message   string
	hasMsg    bool
	connected bool
}

func (s *Server) view() view {
	v := view{
		snap:  s.tracker.Snapshot(),
		state: s.lifecycle.State(),
	}
	v.trigger, v.hasTrig = s.lifecycle.Scheduled()
	v.message, v.hasMsg = s.lifecycle.Message()
	if s.conn != nil {
		v.connected = s.conn.IsConnected()
	}
	return v
}

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string         `json:"state"`
	TriggerTime   string         `json:"trigger_time,omitempty"`
	Message       string         `json:"message,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	Platform      PlatformStatus `json:"platform"`
	Config        ConfigJSON     `json:"config"`
}

// PlatformStatus reports the platform service connection state.
type PlatformStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topic_prefix"`
	HTTPAddr    string `json:"http_addr"`
	AudioRef    string `json:"audio_ref"`
}

func formatJSON(v view) []byte {
	inner := StatusInner{
		State:         string(v.state),
		UptimeSeconds: int64(v.snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     v.snap.StartTime.UTC().Format(timeFormat),
		Timestamp:     v.snap.Now.UTC().Format(timeFormat),
		Platform:      PlatformStatus{Connected: v.connected, Broker: v.snap.Config.Broker},
		Config: ConfigJSON{
			Broker:      v.snap.Config.Broker,
			TopicPrefix: v.snap.Config.TopicPrefix,
			HTTPAddr:    v.snap.Config.HTTPAddr,
			AudioRef:    v.snap.Config.AudioRef,
		},
	}
	if v.hasTrig {
		inner.TriggerTime = v.trigger.Format(timeFormat)
	}
	if v.hasMsg {
		inner.Message = v.message
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
