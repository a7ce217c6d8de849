// Package testserver assembles the full HTTP stack over an in-memory
// object store for functional tests.
package testserver

import (
	"net/http/httptest"
	"testing"

	"github.com/opendaw/opendaw-mcp/internal/domain/project"
	"github.com/opendaw/opendaw-mcp/internal/mcp"
	"github.com/opendaw/opendaw-mcp/internal/render"
	"github.com/opendaw/opendaw-mcp/internal/store/memory"
	"github.com/opendaw/opendaw-mcp/internal/transport"
)

type TestServer struct {
	Server *httptest.Server
	Store  *memory.Store
	Repo   *project.Repository
}

// New builds a server with every capability registered. Generator is nil,
// so generate_json_track behaves as if no API key were configured; tests
// needing generation pass a stub via NewWithGenerator.
func New(t *testing.T) *TestServer {
	t.Helper()
	return NewWithGenerator(t, nil)
}

func NewWithGenerator(t *testing.T, gen mcp.TrackGenerator) *TestServer {
	t.Helper()

	st := memory.New()
	repo := project.NewRepository(st, nil)

	registry := mcp.NewRegistry()
	mcp.RegisterAll(registry, repo, gen, render.NewEngine(), nil)
	dispatcher := mcp.NewDispatcher(registry, nil)

	server := httptest.NewServer(transport.NewServer(dispatcher, dispatcher))

	t.Cleanup(server.Close)

	return &TestServer{Server: server, Store: st, Repo: repo}
}
