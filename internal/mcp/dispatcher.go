package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/opendaw/opendaw-mcp/internal/transport"
)

// Server identity reported by initialize.
const (
	ServerName    = "OpenDAW MCP Server"
	ServerVersion = "1.0.0"
)

// Dispatcher routes protocol methods to the capability registry.
//
// Error layering: capability-level failures (unknown tool, handler error)
// are reported as data inside a tools/call result and never escape as
// protocol errors; only unknown methods and malformed params produce an
// envelope-level error.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the registry.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Handle dispatches one protocol method. The returned error is either a
// *transport.ProtocolError carrying its code or an internal error the
// transport maps to -32603.
func (d *Dispatcher) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "initialize":
		return InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities: ServerCapabilities{
				Tools:     map[string]any{},
				Resources: map[string]any{},
				Prompts:   map[string]any{},
			},
			ServerInfo: ImplementationInfo{Name: ServerName, Version: ServerVersion},
		}, nil

	case "tools/list":
		return ToolsListResult{Tools: d.registry.Tools()}, nil

	case "tools/call":
		var call ToolCallParams
		if err := decodeParams(params, &call); err != nil {
			return nil, transport.InvalidParams(err.Error())
		}
		return d.callTool(ctx, call), nil

	case "resources/list":
		return ResourcesListResult{Resources: d.registry.Resources()}, nil

	case "prompts/list":
		return PromptsListResult{Prompts: d.registry.Prompts()}, nil

	default:
		return nil, transport.MethodNotFound(method)
	}
}

// callTool executes a capability. Every failure mode short of a protocol
// violation lands in the result payload, keeping the JSON-RPC channel alive.
func (d *Dispatcher) callTool(ctx context.Context, call ToolCallParams) ToolCallResult {
	tool, ok := d.registry.Tool(call.Name)
	if !ok {
		return errorResult(fmt.Sprintf("Tool %s not found", call.Name))
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArgs(tool.InputSchema, args); err != nil {
		return errorResult(fmt.Sprintf("Invalid arguments for tool %s: %v", call.Name, err))
	}

	text, err := d.invoke(ctx, tool, args)
	if err != nil {
		d.logger.Warn("tool call failed", "tool", call.Name, "error", err)
		return errorResult(fmt.Sprintf("Error calling tool %s: %v", call.Name, err))
	}
	return textResult(text)
}

// invoke runs the handler, converting a panic into an error so a
// misbehaving capability can never take down the dispatcher.
func (d *Dispatcher) invoke(ctx context.Context, tool Tool, args map[string]any) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panicked: %v", rec)
		}
	}()
	return tool.Handler(ctx, args)
}

// ToolSummaries implements transport.Catalog.
func (d *Dispatcher) ToolSummaries() []transport.ToolSummary {
	defs := d.registry.Tools()
	summaries := make([]transport.ToolSummary, 0, len(defs))
	for _, def := range defs {
		summaries = append(summaries, transport.ToolSummary{
			Name:        def.Name,
			Description: def.Description,
		})
	}
	return summaries
}

// Counts implements transport.Catalog.
func (d *Dispatcher) Counts() (tools, resources, prompts int) {
	return d.registry.Counts()
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, out)
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{Content: []ContentItem{{Type: "text", Text: text}}}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentItem{{Type: "text", Text: text}},
		IsError: true,
	}
}
