// Package tools exposes the budget operations to the model as a library
// of callable functions. Every handler returns its result or error inside
// the FunctionResponse payload; nothing here panics or throws past the
// dispatch boundary.
package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/doctor-kat/ynab-assist/internal/logging"
)

// Tool is one callable function offered to the model.
type Tool interface {
	// Declaration describes the function to the model.
	Declaration() *genai.FunctionDeclaration
	// Call performs the function with the model-supplied arguments.
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// Registry dispatches function calls by name.
type Registry struct {
	tools []Tool
	log   logging.Logger
}

// NewRegistry builds a Registry over the given tools.
func NewRegistry(log logging.Logger, tools ...Tool) *Registry {
	return &Registry{tools: tools, log: log}
}

// Declarations returns every tool's function declaration.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Declaration())
	}
	return out
}

// Dispatch routes a function call to the matching tool. Unknown names
// come back as an error payload, never a dropped call.
func (r *Registry) Dispatch(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	for _, t := range r.tools {
		if t.Declaration().Name == call.Name {
			r.log.Debug("dispatching tool call", logging.F("tool", call.Name))
			return t.Call(ctx, call.ID, call.Args)
		}
	}
	return &genai.FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Response: map[string]any{
			"error": fmt.Sprintf("unknown function %s", call.Name),
		},
	}
}

// handlerTool adapts a plain handler function into a Tool. Mutating
// handlers are gated by the read-only flag before they run.
type handlerTool struct {
	decl     *genai.FunctionDeclaration
	mutating bool
	readOnly func() bool
	handler  func(ctx context.Context, args map[string]any) (string, error)
}

func (t *handlerTool) Declaration() *genai.FunctionDeclaration {
	return t.decl
}

func (t *handlerTool) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: id, Name: t.decl.Name}
	if t.mutating && t.readOnly != nil && t.readOnly() {
		resp.Response = map[string]any{
			"error": "read-only mode is enabled; mutating operations are disabled",
		}
		return resp
	}
	output, err := t.handler(ctx, args)
	if err != nil {
		resp.Response = map[string]any{"error": err.Error()}
		return resp
	}
	resp.Response = map[string]any{"output": output}
	return resp
}
