package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MCPHandler handles MCP method dispatch.
type MCPHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// ToolSummary is the abbreviated tool descriptor served on GET /tools.
type ToolSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog exposes the registered capability set for the status endpoints.
type Catalog interface {
	ToolSummaries() []ToolSummary
	Counts() (tools, resources, prompts int)
}

// Server wires HTTP handlers.
type Server struct {
	handler MCPHandler
	catalog Catalog
}

// NewServer creates the HTTP router: GET /health, GET /tools, POST /mcp.
func NewServer(handler MCPHandler, catalog Catalog) *chi.Mux {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	srv := &Server{handler: handler, catalog: catalog}

	r.Get("/health", srv.handleHealth)
	r.Get("/tools", srv.handleTools)
	r.Post("/mcp", srv.handleMCP)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	tools, resources, prompts := s.catalog.Counts()
	writeJSONBody(w, map[string]any{
		"status":    "healthy",
		"server":    "OpenDAW MCP Server",
		"tools":     tools,
		"resources": resources,
		"prompts":   prompts,
	})
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	tools := s.catalog.ToolSummaries()
	writeJSONBody(w, map[string]any{
		"tools": tools,
		"count": len(tools),
	})
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		var perr *ProtocolError
		if errors.As(err, &perr) {
			WriteError(w, req.ID, perr.Code, perr.Message, nil)
			return
		}
		WriteError(w, req.ID, ErrInternal, err.Error(), nil)
		return
	}

	WriteResult(w, req.ID, result)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONBody(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
