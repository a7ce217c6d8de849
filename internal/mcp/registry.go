package mcp

import (
	"context"
	"fmt"
	"sync"
)

// ToolHandler executes a capability with the caller-supplied argument bag
// and returns human-readable result text.
type ToolHandler func(ctx context.Context, args map[string]any) (string, error)

// Tool is a registry entry: a named capability with a declared input schema.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     ToolHandler
}

// Resource is a readable catalog entry.
type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
	Reader      func(ctx context.Context) (string, error)
}

// Prompt is a promptable template catalog entry.
type Prompt struct {
	Name        string
	Description string
	Arguments   []PromptArgument
	Render      func(args map[string]string) string
}

// Registry holds the three capability catalogs. Registration happens once
// at process start; afterwards the registry is read-only. Re-registering a
// name overwrites the earlier entry in place, keeping registration order.
type Registry struct {
	mu        sync.RWMutex
	tools     []Tool
	resources []Resource
	prompts   []Prompt
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterTool adds or overwrites a tool.
func (r *Registry) RegisterTool(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tools {
		if r.tools[i].Name == t.Name {
			r.tools[i] = t
			return
		}
	}
	r.tools = append(r.tools, t)
}

// Tool looks up a tool by name.
func (r *Registry) Tool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Tools returns the tool descriptors in registration order.
func (r *Registry) Tools() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return defs
}

// AllTools returns the full tool entries in registration order.
func (r *Registry) AllTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// RegisterResource adds or overwrites a resource.
func (r *Registry) RegisterResource(res Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.resources {
		if r.resources[i].URI == res.URI {
			r.resources[i] = res
			return
		}
	}
	r.resources = append(r.resources, res)
}

// Resources returns the resource descriptors in registration order.
func (r *Registry) Resources() []ResourceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ResourceDefinition, 0, len(r.resources))
	for _, res := range r.resources {
		defs = append(defs, ResourceDefinition{
			URI:         res.URI,
			Name:        res.Name,
			Description: res.Description,
			MIMEType:    res.MIMEType,
		})
	}
	return defs
}

// AllResources returns the full resource entries in registration order.
func (r *Registry) AllResources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Resource, len(r.resources))
	copy(out, r.resources)
	return out
}

// RegisterPrompt adds or overwrites a prompt.
func (r *Registry) RegisterPrompt(p Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.prompts {
		if r.prompts[i].Name == p.Name {
			r.prompts[i] = p
			return
		}
	}
	r.prompts = append(r.prompts, p)
}

// Prompts returns the prompt descriptors in registration order.
func (r *Registry) Prompts() []PromptDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]PromptDefinition, 0, len(r.prompts))
	for _, p := range r.prompts {
		args := p.Arguments
		if args == nil {
			args = []PromptArgument{}
		}
		defs = append(defs, PromptDefinition{
			Name:        p.Name,
			Description: p.Description,
			Arguments:   args,
		})
	}
	return defs
}

// AllPrompts returns the full prompt entries in registration order.
func (r *Registry) AllPrompts() []Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Prompt, len(r.prompts))
	copy(out, r.prompts)
	return out
}

// Counts reports the catalog sizes.
func (r *Registry) Counts() (tools, resources, prompts int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools), len(r.resources), len(r.prompts)
}

// validateArgs checks the supplied arguments against a tool's declared
// input schema before invocation: required parameters must be present and
// declared scalar types must match.
func validateArgs(schema, args map[string]any) error {
	if schema == nil {
		return nil
	}
	required, _ := schema["required"].([]string)
	if required == nil {
		// Schemas built from decoded JSON carry []any instead.
		if raw, ok := schema["required"].([]any); ok {
			for _, item := range raw {
				if name, ok := item.(string); ok {
					required = append(required, name)
				}
			}
		}
	}
	for _, name := range required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for name, value := range args {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		declared, _ := prop["type"].(string)
		if declared == "" {
			continue
		}
		if err := checkType(name, declared, value); err != nil {
			return err
		}
	}
	return nil
}

func checkType(name, declared string, value any) error {
	if value == nil {
		return nil
	}
	switch declared {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
	case "integer", "number":
		switch value.(type) {
		case float64, int, int64:
		default:
			return fmt.Errorf("argument %q must be a number", name)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument %q must be a boolean", name)
		}
	}
	return nil
}
