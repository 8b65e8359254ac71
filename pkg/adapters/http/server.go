// Package http exposes the flow editor over HTTP: CRUD on flows, edit
// application with server-sent diff events, previews of the wire document and
// the Mermaid graph, plus health, info, metrics and the OpenAPI contract.
package http

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zapflow/zapflow/internal/engine"
	"github.com/zapflow/zapflow/internal/presentation/graph"
	"github.com/zapflow/zapflow/internal/validator"
	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/observability"
	"github.com/zapflow/zapflow/pkg/ports"
	"github.com/zapflow/zapflow/pkg/session"
	"github.com/zapflow/zapflow/pkg/wire"
)

//go:embed openapi.yaml
var openapiSpec []byte

// AppVersion is reported by /info. The CLI stamps it from the release
// version at startup.
var AppVersion = "dev"

// Server wires the session manager into HTTP handlers.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager
	Metrics  *observability.Metrics
	Source   ports.FlowSource
	Logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics attaches Prometheus collectors and exposes /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.Metrics = m }
}

// WithSource exposes a read-only flow source under /source.
func WithSource(src ports.FlowSource) Option {
	return func(s *Server) { s.Source = src }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// NewHandler creates the HTTP handler for the editor.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	server := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/flows", server.ListFlows)
	r.Route("/flows/{flowID}", func(r chi.Router) {
		r.Post("/", server.OpenFlow)
		r.Get("/", server.GetFlow)
		r.Delete("/", server.DeleteFlow)
		r.Post("/edits", server.ApplyEdit)
		r.Get("/issues", server.GetIssues)
		r.Get("/document", server.GetDocument)
		r.Put("/document", server.PutDocument)
		r.Get("/graph", server.GetGraph)
	})

	r.Get("/events", server.SubscribeEvents)

	if server.Source != nil {
		r.Get("/source/flows", server.ListSourceFlows)
		r.Post("/flows/{flowID}/import", server.ImportFlow)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Zapflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	loader := openapi3.NewLoader()
	if doc, err := loader.LoadFromData(openapiSpec); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	resp := map[string]string{
		"app":         "zapflow-http",
		"version":     strings.TrimSpace(AppVersion),
		"api_version": apiVersion,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListFlows handles the GET /flows request.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("List failed", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"flows": ids})
}

// OpenFlow handles the POST /flows/{flowID} request. It creates the flow with
// the default single screen when it does not exist yet.
func (s *Server) OpenFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	spec, err := s.Sessions.LoadOrCreate(r.Context(), flowID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Open error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Open failed", "flow_id", flowID, "error", err)
		return
	}
	s.Metrics.FlowOpened()
	s.writeFlow(w, flowID, spec)
}

// GetFlow handles the GET /flows/{flowID} request.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	spec, err := s.Sessions.Load(r.Context(), flowID)
	if err == domain.ErrFlowNotFound {
		http.Error(w, "Flow not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Load failed", "flow_id", flowID, "error", err)
		return
	}
	s.writeFlow(w, flowID, engine.Normalize(spec))
}

// DeleteFlow handles the DELETE /flows/{flowID} request.
func (s *Server) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	if err := s.Sessions.Delete(r.Context(), flowID); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Delete failed", "flow_id", flowID, "error", err)
		return
	}
	s.Metrics.FlowClosed()
	w.WriteHeader(http.StatusNoContent)
}

// ApplyEdit handles the POST /flows/{flowID}/edits request. The resulting
// diff is broadcast to SSE subscribers of the flow.
func (s *Server) ApplyEdit(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var edit domain.Edit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("ApplyEdit: Invalid request body", "error", err)
		return
	}

	spec, diff, err := s.Sessions.Edit(r.Context(), flowID, edit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Edit error: %v", err), http.StatusInternalServerError)
		s.Logger.Error("Edit failed", "flow_id", flowID, "error", err)
		return
	}
	s.Metrics.RecordEdit(string(edit.Type))

	if diff != nil {
		s.Logger.Debug("ApplyEdit: Diff calculated", "flow_id", flowID)
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(flowID, string(bytes))
		}
	} else {
		s.Logger.Debug("ApplyEdit: No diff calculated", "flow_id", flowID)
	}

	s.writeFlow(w, flowID, spec)
}

// GetIssues handles the GET /flows/{flowID}/issues request.
func (s *Server) GetIssues(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	spec, err := s.Sessions.Load(r.Context(), flowID)
	if err == domain.ErrFlowNotFound {
		http.Error(w, "Flow not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}

	issues := validator.Check(engine.Normalize(spec))
	s.Metrics.SetIssues(flowID, len(issues))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"issues": issues})
}

// GetDocument handles the GET /flows/{flowID}/document request, returning
// the wire-format flow document.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	spec, err := s.Sessions.Load(r.Context(), flowID)
	if err == domain.ErrFlowNotFound {
		http.Error(w, "Flow not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}

	doc := wire.Encode(engine.Normalize(spec))
	out, err := wire.MarshalDocument(doc)
	if err != nil {
		http.Error(w, fmt.Sprintf("Encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// PutDocument handles the PUT /flows/{flowID}/document request: it imports a
// raw flow document of any known shape as the flow's new state.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	spec, err := wire.Decode(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Unsupported document: %v", err), http.StatusUnprocessableEntity)
		s.Logger.Warn("PutDocument: decode failed", "flow_id", flowID, "error", err)
		return
	}
	spec = engine.Normalize(spec)

	if err := s.Sessions.Save(r.Context(), flowID, spec); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		return
	}
	s.writeFlow(w, flowID, spec)
}

// GetGraph handles the GET /flows/{flowID}/graph request, returning a Mermaid
// diagram of the flow.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	spec, err := s.Sessions.Load(r.Context(), flowID)
	if err == domain.ErrFlowNotFound {
		http.Error(w, "Flow not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(engine.Normalize(spec), nil))
}

// ListSourceFlows handles the GET /source/flows request.
func (s *Server) ListSourceFlows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Source.ListFlows()
	if err != nil {
		http.Error(w, fmt.Sprintf("Source error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"flows": ids})
}

// ImportFlow handles the POST /flows/{flowID}/import request: it reads a
// document from the read-only source and stores it as the flow's state.
// Unreadable or unknown-shape documents fall back to the default spec so the
// editor always opens.
func (s *Server) ImportFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var params struct {
		SourceID string `json:"source_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil || params.SourceID == "" {
		http.Error(w, "source_id is required", http.StatusBadRequest)
		return
	}

	raw, err := s.Source.GetFlow(params.SourceID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Source error: %v", err), http.StatusBadGateway)
		s.Logger.Error("ImportFlow: source read failed", "source_id", params.SourceID, "error", err)
		return
	}

	spec := engine.Normalize(wire.DecodeOrDefault(raw))
	if err := s.Sessions.Save(r.Context(), flowID, spec); err != nil {
		http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
		return
	}
	s.writeFlow(w, flowID, spec)
}

// SubscribeEvents handles the GET /events request (SSE). Clients subscribe to
// a flow and receive SpecDiff payloads as other editors apply changes.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var flowID string
	if err := runtime.BindQueryParameter("form", true, true, "flow_id", r.URL.Query(), &flowID); err != nil {
		http.Error(w, "flow_id is required", http.StatusBadRequest)
		return
	}
	var watch *string
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watch); err != nil {
		http.Error(w, "invalid watch parameter", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.Logger.Info("SSE: Subscribing to Flow Updates", "flow_id", flowID)

	ch, cancel := s.Streams.Subscribe(flowID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if watch != nil {
		watchList = strings.Split(*watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "flow_id", flowID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !diffMatchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// diffMatchesWatch deserializes the diff to check whether any watched aspect
// changed. Unparseable payloads pass through unfiltered.
func diffMatchesWatch(msg string, watchList []string) bool {
	var diff domain.SpecDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "screens":
			if len(diff.AddedScreens) > 0 || len(diff.ChangedScreens) > 0 || len(diff.RemovedScreens) > 0 {
				return true
			}
		case "routing":
			if len(diff.Routing) > 0 {
				return true
			}
		case "branches":
			if len(diff.Branches) > 0 {
				return true
			}
		}
	}
	return false
}

func (s *Server) writeFlow(w http.ResponseWriter, flowID string, spec domain.Spec) {
	w.Header().Set("Content-Type", "application/json")
	resp := struct {
		FlowID string      `json:"flow_id"`
		Spec   domain.Spec `json:"spec"`
	}{FlowID: flowID, Spec: spec}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.Logger.Error("Response encode failed", "flow_id", flowID, "error", err)
	}
}
