package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis/wakeword/internal/alarm"
	"github.com/hollis/wakeword/internal/platform"
	"github.com/hollis/wakeword/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *platform.Fake, *alarm.Lifecycle) {
	t.Helper()
	fake := platform.NewFake()
	fake.Connected = true
	lc := alarm.New(fake, alarm.Options{
		Now:    func() time.Time { return time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC) },
		Logger: zerolog.Nop(),
	})
	tr := status.NewTracker(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), status.Config{
		Broker:      "tcp://broker.example:1883",
		TopicPrefix: "alarm/svc",
		HTTPAddr:    ":8080",
	})
	srv := New(":0", tr, lc, fake)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, fake, lc
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func ringNow(t *testing.T, fake *platform.Fake, lc *alarm.Lifecycle) {
	t.Helper()
	req := fake.LastScheduled()
	require.NotNil(t, req)
	lc.OnRing(alarm.RingEvent{Alarms: []alarm.RingingAlarm{
		{ID: req.ID, TriggerTime: req.TriggerTime, Payload: req.Payload},
	}})
}

func TestArmEndpoint(t *testing.T) {
	ts, fake, lc := newTestServer(t)

	resp := postJSON(t, ts.URL+"/arm", `{"time":"07:30","message":"stop-it"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "SCHEDULED", body["state"])
	assert.Equal(t, "2026-03-10T07:30:00Z", body["trigger_time"])
	assert.NotEmpty(t, body["arm_id"])

	assert.Equal(t, alarm.StateScheduled, lc.State())
	require.NotNil(t, fake.LastScheduled())
}

func TestArmEndpointRejectsBadInput(t *testing.T) {
	ts, _, lc := newTestServer(t)

	for _, body := range []string{
		`{"time":"25:00","message":"x"}`,
		`{"time":"","message":"x"}`,
		`{"time":"07:30","message":"  "}`,
		`not json`,
	} {
		resp := postJSON(t, ts.URL+"/arm", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
	}
	assert.Equal(t, alarm.StateIdle, lc.State())
}

func TestArmEndpointServiceRejected(t *testing.T) {
	ts, fake, lc := newTestServer(t)
	fake.ScheduleError = io.ErrUnexpectedEOF

	resp := postJSON(t, ts.URL+"/arm", `{"time":"07:30","message":"stop-it"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, alarm.StateIdle, lc.State())
}

func TestCancelEndpoint(t *testing.T) {
	ts, fake, lc := newTestServer(t)
	postJSON(t, ts.URL+"/arm", `{"time":"07:30","message":"stop-it"}`)

	resp := postJSON(t, ts.URL+"/cancel", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, alarm.StateIdle, lc.State())
	assert.Equal(t, []string{alarm.SlotID}, fake.Stopped)
}

func TestDismissEndpointFlow(t *testing.T) {
	ts, fake, lc := newTestServer(t)
	postJSON(t, ts.URL+"/arm", `{"time":"07:30","message":"stop-it"}`)

	// Not ringing yet.
	resp := postJSON(t, ts.URL+"/dismiss", `{"typed":"stop-it"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	ringNow(t, fake, lc)

	// Wrong message: the gate rejects and the alarm keeps ringing.
	resp = postJSON(t, ts.URL+"/dismiss", `{"typed":"stop-i"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, alarm.StateRinging, lc.State())

	// Exact match dismisses.
	resp = postJSON(t, ts.URL+"/dismiss", `{"typed":"stop-it"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "IDLE", body["state"])
	assert.Equal(t, alarm.StateIdle, lc.State())
}

func TestMatchEndpoint(t *testing.T) {
	ts, fake, lc := newTestServer(t)
	postJSON(t, ts.URL+"/arm", `{"time":"07:30","message":"stop-it"}`)
	ringNow(t, fake, lc)

	for typed, want := range map[string]bool{
		"stop-it":   true,
		" stop-it ": true,
		"stop-i":    false,
		"":          false,
	} {
		resp, err := http.Get(ts.URL + "/match?typed=" + strings.ReplaceAll(typed, " ", "%20"))
		require.NoError(t, err)
		body := decodeBody(t, resp)
		resp.Body.Close()
		assert.Equal(t, want, body["match"], "typed %q", typed)
	}
}

func TestStatusJSONEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)
	postJSON(t, ts.URL+"/arm", `{"time":"07:30","message":"stop-it"}`)

	resp, err := http.Get(ts.URL + "/index.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var sj StatusJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sj))
	assert.Equal(t, "SCHEDULED", sj.Status.State)
	assert.Equal(t, "2026-03-10T07:30:00Z", sj.Status.TriggerTime)
	assert.Equal(t, "stop-it", sj.Status.Message)
	assert.True(t, sj.Status.Platform.Connected)
	assert.Equal(t, "tcp://broker.example:1883", sj.Status.Platform.Broker)
}

func TestStatusConnectionIsLive(t *testing.T) {
	ts, fake, _ := newTestServer(t)

	fetch := func() bool {
		resp, err := http.Get(ts.URL + "/index.json")
		require.NoError(t, err)
		defer resp.Body.Close()
		var sj StatusJSON
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&sj))
		return sj.Status.Platform.Connected
	}

	assert.True(t, fetch())

	// A broker outage after startup must show up on the next request,
	// and so must the reconnect.
	fake.Connected = false
	assert.False(t, fetch())

	fake.Connected = true
	assert.True(t, fetch())
}

func TestIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "wakeword")
	assert.Contains(t, string(body), "IDLE")
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "wakeword_arms_total")
}
