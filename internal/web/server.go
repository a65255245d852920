// Package web serves the browser chat UI and the JSON API it drives. The
// UI observes session state by polling; submits are fire-and-forget.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/yuanchaoma-db/genie-space/internal/chat"
	"github.com/yuanchaoma-db/genie-space/internal/config"
	"github.com/yuanchaoma-db/genie-space/internal/logger"
)

//go:embed static
var staticFS embed.FS

type Server struct {
	registry  *chat.Registry
	profile   config.Profile
	startTime time.Time
	server    *http.Server
	mux       *http.ServeMux
}

func NewServer(registry *chat.Registry, profile config.Profile) *Server {
	s := &Server{
		registry:  registry,
		profile:   profile,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/profile", s.handleProfile)
	mux.HandleFunc("POST /api/messages", s.handleSubmit)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/sessions/{index}/activate", s.handleActivate)
	mux.HandleFunc("POST /api/sessions/{id}/clear-context", s.handleClearContext)
	mux.HandleFunc("POST /api/new-chat", s.handleNewChat)
	mux.HandleFunc("GET /api/transcript", s.handleTranscript)

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /", http.FileServer(http.FS(static)))

	s.mux = mux
	return s
}

// Handler exposes the routes for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Info("web server starting", "addr", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

type submitRequest struct {
	Content string `json:"content"`
	NewChat bool   `json:"new_chat"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pending, err := s.registry.Submit(req.Content, req.NewChat)
	if err != nil {
		if errors.Is(err, chat.ErrBusy) {
			// One question at a time; the UI disables input, so this is
			// just a silent no-op for stragglers.
			writeError(w, http.StatusConflict, "a request is already running")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"session_id": pending.SessionID})
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Sessions())
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session index")
		return
	}

	transcript, err := s.registry.SwitchActive(index)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"turns": transcript})
}

func (s *Server) handleClearContext(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.ClearContext(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type newChatRequest struct {
	DiscardPending bool `json:"discard_pending"`
}

func (s *Server) handleNewChat(w http.ResponseWriter, r *http.Request) {
	var req newChatRequest
	// Body is optional; an empty body keeps the pending placeholder.
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.registry.Reset(req.DiscardPending)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTranscript(w http.ResponseWriter, _ *http.Request) {
	turns, busy := s.registry.Transcript()
	writeJSON(w, http.StatusOK, map[string]any{"turns": turns, "busy": busy})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.profile)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusResponse struct {
	Uptime   string  `json:"uptime"`
	Sessions int     `json:"sessions"`
	OS       string  `json:"os"`
	Arch     string  `json:"arch"`
	CPUUsage float64 `json:"cpu_usage_percent"`
	MemUsage float64 `json:"mem_usage_percent"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	cpuPercent, _ := cpu.Percent(0, false)
	cpuUsage := 0.0
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}

	memUsage := 0.0
	if memInfo, err := mem.VirtualMemory(); err == nil {
		memUsage = memInfo.UsedPercent
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Uptime:   time.Since(s.startTime).Round(time.Second).String(),
		Sessions: len(s.registry.Sessions()),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUUsage: cpuUsage,
		MemUsage: memUsage,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
