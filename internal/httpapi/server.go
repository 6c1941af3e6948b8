// Package httpapi mounts the per-agent submit/status/unified/flat/rebuilt/
// stream operations over net/http, plus a root info route and a health
// check, mirroring the original router's per-service path-prefix convention.
package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cast"

	"github.com/buildsense-ai/review-app-sub000/internal/orchestrator"
	"github.com/buildsense-ai/review-app-sub000/internal/sse"
)

// AgentInfo describes one mounted agent for the root info route.
type AgentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HealthFunc reports whether an agent's backing clients currently hold
// credentials, for the /health endpoint's per-agent availability view.
type HealthFunc func() bool

// Server wires an Orchestrator to the HTTP transport.
type Server struct {
	orch   *orchestrator.Orchestrator
	agents []AgentInfo
	health map[string]HealthFunc
	logger *slog.Logger
}

// New constructs a Server. agents lists every mounted agent name in route
// order; health supplies an optional per-agent liveness probe (agents
// omitted from health are reported healthy).
func New(orch *orchestrator.Orchestrator, agents []AgentInfo, health map[string]HealthFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{orch: orch, agents: agents, health: health, logger: logger}
}

// Routes builds the full mux, wrapped with request logging and permissive
// CORS for browser-based collaborators.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	for _, a := range s.agents {
		agentName := a.Name
		mux.HandleFunc("POST /api/"+agentName+"/submit", s.handleSubmit(agentName))
		mux.HandleFunc("GET /api/"+agentName+"/status/{task_id}", s.handleStatus)
		mux.HandleFunc("GET /api/"+agentName+"/unified/{task_id}", s.handleUnified)
		mux.HandleFunc("GET /api/"+agentName+"/flat/{task_id}", s.handleFlat)
		mux.HandleFunc("GET /api/"+agentName+"/rebuilt/{task_id}", s.handleRebuilt)
		mux.HandleFunc("POST /api/"+agentName+"/stream", s.handleStream(agentName))
	}

	return s.withMiddleware(mux)
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request handled",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(started))
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "review-app",
		"agents":  s.agents,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]bool, len(s.agents))
	for _, a := range s.agents {
		probe, ok := s.health[a.Name]
		status[a.Name] = !ok || probe()
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "agents": status})
}

// submitRequest is the shared request shape for submit/stream: a document
// plus loosely-typed per-request option overrides.
type submitRequest struct {
	DocumentContent string         `json:"document_content"`
	DocumentTitle   string         `json:"document_title"`
	Filename        string         `json:"filename"`
	Options         map[string]any `json:"options"`
}

func (s *Server) handleSubmit(agentName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "malformed request body")
			return
		}

		title := resolveTitle(req)
		sync := cast.ToBool(req.Options["sync"])

		if sync {
			result, err := s.orch.SubmitSync(r.Context(), agentName, title, req.DocumentContent)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
				return
			}
			writeJSON(w, http.StatusOK, result)
			return
		}

		taskID, err := s.orch.SubmitAsync(agentName, title, req.DocumentContent)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"task_id": taskID, "status": "pending"})
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")
	snap, ok := s.orch.GetStatus(taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown task_id")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUnified(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")
	sections, ok := s.orch.GetUnified(taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unified sections not available for this task")
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (s *Server) handleFlat(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")
	chapters, ok := s.orch.GetFlat(taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "flat chapters not available for this task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": chapters})
}

func (s *Server) handleRebuilt(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")
	content, ok := s.orch.GetRebuilt(taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "rebuilt document not available for this task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

func (s *Server) handleStream(agentName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "malformed request body")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		eventChan := make(chan *sse.Message, 8)
		go func() {
			defer close(eventChan)
			s.orch.Stream(r.Context(), agentName, resolveTitle(req), req.DocumentContent, func(e orchestrator.StreamEvent) {
				buf := sse.GetBuffer()
				if err := json.NewEncoder(buf).Encode(e.Data); err != nil {
					sse.ReleaseBuffer(buf)
					return
				}
				msg := sse.GetMessage()
				msg.Event = e.Event
				msg.Data = append(msg.Data, bytes.TrimRight(buf.Bytes(), "\n")...)
				sse.ReleaseBuffer(buf)
				eventChan <- msg
			})
		}()

		if err := sse.WithSSE(r.Context(), w, eventChan); err != nil {
			s.logger.Warn("sse stream ended early", "error", err)
		}
		for msg := range eventChan {
			sse.ReleaseMessage(msg)
		}
	}
}

func resolveTitle(req submitRequest) string {
	if req.DocumentTitle != "" {
		return req.DocumentTitle
	}
	return req.Filename
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{"error": kind, "message": message})
}
