// Package web provides the HTTP control and status surface for the daemon.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hollis/wakeword/internal/alarm"
	"github.com/hollis/wakeword/internal/platform"
	"github.com/hollis/wakeword/internal/status"
)

// Server exposes the alarm over HTTP: status, arm, cancel, dismiss, and
// live match feedback.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	lifecycle  *alarm.Lifecycle
	conn       platform.ConnectionStatus
}

// New creates a Server reading daemon state from tracker, alarm state from
// lifecycle, and the platform connection state live from conn (nil reads
// as disconnected).
func New(addr string, tracker *status.Tracker, lifecycle *alarm.Lifecycle, conn platform.ConnectionStatus) *Server {
	s := &Server{tracker: tracker, lifecycle: lifecycle, conn: conn}

	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/index.json", s.handleJSON)
	r.Post("/arm", s.handleArm)
	r.Post("/cancel", s.handleCancel)
	r.Post("/dismiss", s.handleDismiss)
	r.Get("/match", s.handleMatch)
	r.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Handler returns the router, for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.view())
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatJSON(s.view()))
}

type armRequest struct {
	Time    string `json:"time"`
	Message string `json:"message"`
}

type armResponse struct {
	State       string `json:"state"`
	TriggerTime string `json:"trigger_time"`
	ArmID       string `json:"arm_id"`
}

func (s *Server) handleArm(w http.ResponseWriter, r *http.Request) {
	var req armRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	tod, err := alarm.ParseTimeOfDay(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	info, err := s.lifecycle.Arm(r.Context(), tod, req.Message)
	switch {
	case errors.Is(err, alarm.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, alarm.ErrServiceRejected):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, armResponse{
		State:       string(s.lifecycle.State()),
		TriggerTime: info.TriggerTime.Format(timeFormat),
		ArmID:       info.ArmID,
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.lifecycle.Cancel(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(s.lifecycle.State())})
}

type dismissRequest struct {
	Typed string `json:"typed"`
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	// Gate check and stop run as one atomic lifecycle step.
	if err := s.lifecycle.DismissIfMatch(r.Context(), req.Typed); err != nil {
		switch {
		case errors.Is(err, alarm.ErrNotRinging):
			writeError(w, http.StatusConflict, "alarm is not ringing")
		case errors.Is(err, alarm.ErrNoMatch):
			writeError(w, http.StatusForbidden, "typed text does not match the alarm message")
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(s.lifecycle.State())})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	typed := r.URL.Query().Get("typed")
	writeJSON(w, http.StatusOK, map[string]bool{"match": s.lifecycle.MatchTyped(typed)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
