// Package content converts the typed values a Space returns into the
// content blocks the host protocol understands.
package content

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tsubasakong/mcp-hfspace/src/json"
	"github.com/tsubasakong/mcp-hfspace/src/schema"
	"github.com/tsubasakong/mcp-hfspace/src/workdir"
)

// Kind is the closed set of component kinds the registry dispatches on.
// Unknown components map to KindOther and take the default text path.
type Kind string

const (
	KindImage   Kind = "Image"
	KindAudio   Kind = "Audio"
	KindChatbot Kind = "Chatbot"
	KindOther   Kind = "Other"
)

// KindOf maps a raw component name onto a Kind. Total: every input yields
// a valid Kind.
func KindOf(component string) Kind {
	switch component {
	case "Image", "Audio", "Chatbot":
		return Kind(component)
	default:
		return KindOther
	}
}

// CallContext carries the per-call environment converters need.
type CallContext struct {
	// ToolName feeds generated artifact filenames.
	ToolName string
	// Token is the bearer token attached to artifact fetches.
	Token string
	// DesktopMode degrades save failures to warnings and replaces inline
	// audio blobs with a note, for hosts that cannot play them.
	DesktopMode bool
	Workdir     *workdir.Dir
	HTTPClient  *http.Client
	Logger      func(format string, args ...interface{})
}

func (cc *CallContext) logf(format string, args ...interface{}) {
	if cc.Logger != nil {
		cc.Logger(format, args...)
	}
}

// ConvertFunc turns one returned value into a content block. Returning
// (nil, nil) defers to the default text converter.
type ConvertFunc func(ctx context.Context, cc *CallContext, ret *schema.ReturnInfo, value any) (mcp.Content, error)

// Registry maps component kinds to converters. Populate once at startup;
// calls only read it, so concurrent calls need no locking.
type Registry struct {
	converters map[Kind]ConvertFunc
}

// NewRegistry returns an empty registry; every value takes the default
// text path until converters are registered.
func NewRegistry() *Registry {
	return &Registry{converters: make(map[Kind]ConvertFunc)}
}

// DefaultRegistry returns a registry with the image, audio, and chatbot
// converters installed.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindImage, ConvertImage)
	r.Register(KindAudio, ConvertAudio)
	// chat histories render as stringified text, not parsed turns
	r.Register(KindChatbot, func(context.Context, *CallContext, *schema.ReturnInfo, any) (mcp.Content, error) {
		return nil, nil
	})
	return r
}

// Register installs a converter for one kind, replacing any previous one.
func (r *Registry) Register(kind Kind, fn ConvertFunc) {
	r.converters[kind] = fn
}

// Convert produces a content block for one output slot. Converter failures
// degrade to a text block describing the failure; they never abort the
// call.
func (r *Registry) Convert(ctx context.Context, cc *CallContext, ret *schema.ReturnInfo, value any) mcp.Content {
	if fn, ok := r.converters[KindOf(ret.Component)]; ok {
		block, err := fn(ctx, cc, ret, value)
		if err != nil {
			cc.logf("converting %s output: %v", ret.Component, err)
			return mcp.NewTextContent(fmt.Sprintf("Failed to convert %s output: %v", label(ret), err))
		}
		if block != nil {
			return block
		}
	}
	return defaultText(ret, value)
}

// defaultText renders "<label>: <value>", JSON-stringifying non-string
// values.
func defaultText(ret *schema.ReturnInfo, value any) mcp.Content {
	rendered, ok := value.(string)
	if !ok {
		var err error
		rendered, err = json.MarshalToString(value)
		if err != nil {
			rendered = fmt.Sprintf("%v", value)
		}
	}
	return mcp.NewTextContent(fmt.Sprintf("%s: %s", label(ret), rendered))
}

func label(ret *schema.ReturnInfo) string {
	if ret.Label != "" {
		return ret.Label
	}
	return "Output"
}
