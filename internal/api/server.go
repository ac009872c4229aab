// Package api exposes the agents over HTTP. The surface is three resource
// routes plus a healthcheck; stdlib routing keeps the dependency graph flat
// since Go 1.22 method patterns cover everything the handlers need.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/pkg/models"
)

// statusHeader carries the extraction outcome for callers that route on
// headers instead of parsing the body.
const (
	statusHeader          = "X-Agent-Status"
	statusPartialFallback = "partial-fallback"
)

// Runner executes one agent run. Satisfied by agent.Runner.
type Runner interface {
	Run(ctx context.Context, spec *agent.Spec, input models.RunInput) (*models.RunResult, error)
}

// Server routes agent requests. Construct with NewServer; the zero value has
// no routes.
type Server struct {
	registry *agent.Registry
	runner   Runner
	mux      *http.ServeMux
}

// NewServer wires the routes against a populated registry.
func NewServer(registry *agent.Registry, runner Runner) *Server {
	s := &Server{registry: registry, runner: runner, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /agents", s.handleList)
	s.mux.HandleFunc("GET /agents/{name}", s.handleDescribe)
	s.mux.HandleFunc("POST /agents/{name}/run", s.handleRun)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// agentInfo is the wire form of an agent's metadata.
type agentInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DefaultURL   string `json:"default_url,omitempty"`
	RecordsField string `json:"records_field"`
	DefaultCap   int    `json:"default_cap"`
	NeedsLogin   bool   `json:"needs_login"`
	InputSchema  string `json:"input_schema"`
	OutputSchema string `json:"output_schema"`
}

func describe(spec *agent.Spec) agentInfo {
	return agentInfo{
		Name:         spec.Name,
		Description:  spec.Description,
		DefaultURL:   spec.DefaultURL,
		RecordsField: spec.RecordsField,
		DefaultCap:   spec.Cap(models.RunInput{}),
		NeedsLogin:   spec.NeedsLogin,
		InputSchema:  "run_input",
		OutputSchema: "report." + spec.RecordsField,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	specs := s.registry.List()
	infos := make([]agentInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, describe(spec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": infos})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.registry.Get(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown agent")
		return
	}
	writeJSON(w, http.StatusOK, describe(spec))
}

// runResponse wraps a finished run. Success is false when every extraction
// strategy failed and the report is the placeholder.
type runResponse struct {
	RunID      string         `json:"run_id"`
	Agent      string         `json:"agent"`
	DurationMS int64          `json:"duration_ms"`
	Success    bool           `json:"success"`
	Report     *models.Report `json:"report"`
	Warning    string         `json:"warning,omitempty"`
	Message    string         `json:"message,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.registry.Get(r.PathValue("name"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown agent")
		return
	}

	var input models.RunInput
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "request body is not valid JSON: "+err.Error())
			return
		}
	}

	result, err := s.runner.Run(r.Context(), spec, input)
	if err != nil {
		if errors.Is(err, agent.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("agent", spec.Name).Msg("run failed")
		writeError(w, http.StatusInternalServerError, "agent run failed")
		return
	}

	resp := runResponse{
		RunID:      result.RunID,
		Agent:      result.Agent,
		DurationMS: result.DurationMS,
		Success:    true,
		Report:     result.Report,
	}
	status := http.StatusOK
	if result.Report.IsSentinel() {
		resp.Success = false
		resp.Warning = "extraction fell back to the placeholder report"
		resp.Message = result.Report.Notes
		status = http.StatusPartialContent
		w.Header().Set(statusHeader, statusPartialFallback)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("response write failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
