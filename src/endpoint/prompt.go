package endpoint

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// PromptDefinition renders the bound endpoint as a host prompt whose
// arguments mirror the tool schema.
func (w *Wrapper) PromptDefinition() mcp.Prompt {
	opts := []mcp.PromptOption{
		mcp.WithPromptDescription(fmt.Sprintf("Use the %s of Space %s", w.ref.DisplayName(), w.ref.SpaceID())),
	}
	for _, name := range w.objSchema.Order {
		prop := w.objSchema.Properties[name]
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(prop.Description)}
		if required(w.objSchema.Required, name) {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(name, argOpts...))
	}
	return mcp.NewPrompt(w.ref.ToolName(), opts...)
}

// HandlePrompt fills the endpoint's template with the supplied arguments.
func (w *Wrapper) HandlePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := make(map[string]string, len(req.Params.Arguments))
	for k, v := range req.Params.Arguments {
		args[k] = v
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Template for %s", w.ref.DisplayName()),
		Messages: []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(w.PromptTemplate(args))),
		},
	}, nil
}

// PromptTemplate derives a fill-in-the-blank template over the derived
// schema, substituting supplied values and placeholders elsewhere.
func (w *Wrapper) PromptTemplate(args map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Use the %q tool with:\n", w.ref.ToolName())
	for _, name := range w.objSchema.Order {
		prop := w.objSchema.Properties[name]
		value, ok := args[name]
		if !ok || value == "" {
			value = placeholder(name, prop.Description, prop.Default)
		}
		fmt.Fprintf(&b, "%s: %s\n", name, value)
	}
	return strings.TrimRight(b.String(), "\n")
}

func placeholder(name, description string, def any) string {
	hint := description
	if hint == "" {
		hint = name
	}
	if def != nil {
		return fmt.Sprintf("[Provide %s, default: %v]", hint, def)
	}
	return fmt.Sprintf("[Provide %s]", hint)
}

func required(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
