package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `OpenDAW MCP server for music production. Create projects, add tracks,
generate AI track content, and export to wav, mp3, or dawproject. Start with
create_project or list_projects to see what already exists.`

// NewSDKServer bridges the registry onto the official MCP SDK server for
// stdio transport. The HTTP transport dispatches against the registry
// directly; both paths share the same tool handlers.
func NewSDKServer(reg *Registry, logger *slog.Logger) (*sdkmcp.Server, error) {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	for _, tool := range reg.AllTools() {
		schema, err := compileSchema(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", tool.Name, err)
		}
		handler := tool.Handler
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args map[string]any) (*sdkmcp.CallToolResult, any, error) {
			if args == nil {
				args = map[string]any{}
			}
			text, err := handler(ctx, args)
			if err != nil {
				return &sdkmcp.CallToolResult{
					IsError: true,
					Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: err.Error()}},
				}, nil, nil
			}
			return &sdkmcp.CallToolResult{
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
			}, nil, nil
		})
	}

	for _, res := range reg.AllResources() {
		reader := res.Reader
		uri := res.URI
		mimeType := res.MIMEType
		server.AddResource(&sdkmcp.Resource{
			URI:         res.URI,
			Name:        res.Name,
			Description: res.Description,
			MIMEType:    res.MIMEType,
		}, func(ctx context.Context, _ *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			body, err := reader(ctx)
			if err != nil {
				return nil, err
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{
					{URI: uri, MIMEType: mimeType, Text: body},
				},
			}, nil
		})
	}

	for _, prompt := range reg.AllPrompts() {
		render := prompt.Render
		args := make([]*sdkmcp.PromptArgument, 0, len(prompt.Arguments))
		for _, arg := range prompt.Arguments {
			args = append(args, &sdkmcp.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Required,
			})
		}
		server.AddPrompt(&sdkmcp.Prompt{
			Name:        prompt.Name,
			Description: prompt.Description,
			Arguments:   args,
		}, func(_ context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
			promptArgs := req.Params.Arguments
			if promptArgs == nil {
				promptArgs = map[string]string{}
			}
			return &sdkmcp.GetPromptResult{
				Messages: []*sdkmcp.PromptMessage{
					{Role: "user", Content: &sdkmcp.TextContent{Text: render(promptArgs)}},
				},
			}, nil
		})
	}

	return server, nil
}

func compileSchema(raw map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding input schema: %w", err)
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decoding input schema: %w", err)
	}
	return &schema, nil
}
