package endpoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tsubasakong/mcp-hfspace/src/content"
	"github.com/tsubasakong/mcp-hfspace/src/gradio"
	"github.com/tsubasakong/mcp-hfspace/src/json"
	"github.com/tsubasakong/mcp-hfspace/src/progress"
	"github.com/tsubasakong/mcp-hfspace/src/schema"
	"github.com/tsubasakong/mcp-hfspace/src/workdir"
)

// preferredEndpoints is the ordered list of conventional endpoint names
// tried when the path names no endpoint: explicit intent beats convention
// beats whatever is available.
var preferredEndpoints = []string{
	"/predict", "/infer", "/generate", "/complete", "/model_chat", "/lambda", "/on_submit",
}

// Caller submits one call and returns its event stream. *gradio.Client
// satisfies it; tests substitute fakes.
type Caller interface {
	Submit(ctx context.Context, target gradio.EndpointTarget, data []any) (gradio.EventStream, error)
}

// NotifyFunc forwards one progress notification to the host.
type NotifyFunc func(ctx context.Context, params map[string]any) error

// Options configures endpoint resolution and calls.
type Options struct {
	// Token is the opaque bearer token forwarded to the Space and to
	// artifact fetches.
	Token string
	// BaseURL overrides the derived Space URL (tests).
	BaseURL string
	// DesktopMode relaxes artifact persistence failures and disables
	// inline audio blobs.
	DesktopMode bool
	Registry    *content.Registry
	Workdir     *workdir.Dir
	HTTPClient  *http.Client
	Logger      func(format string, args ...interface{})
}

// Wrapper binds one resolved remote endpoint and exposes it as a tool.
type Wrapper struct {
	ref       Ref
	spec      *schema.EndpointSpec
	objSchema *schema.ObjectSchema
	caller    Caller
	opts      Options
}

// New connects to the Space named by path (owner/space[/endpoint]),
// discovers its schema, and binds the best matching endpoint.
func New(ctx context.Context, path string, opts Options) (*Wrapper, error) {
	segs := splitPath(path)
	if len(segs) < 2 || len(segs) > 3 {
		return nil, &PathFormatError{Path: path}
	}
	client := gradio.Connect(segs[0]+"/"+segs[1], gradio.Options{
		Token:      opts.Token,
		BaseURL:    opts.BaseURL,
		HTTPClient: opts.HTTPClient,
		Logger:     opts.Logger,
	})
	api, err := client.ViewAPI(ctx)
	if err != nil {
		return nil, err
	}
	explicit := ""
	if len(segs) == 3 {
		explicit = segs[2]
	}
	ref, spec, err := selectEndpoint(segs[0], segs[1], api, explicit)
	if err != nil {
		return nil, err
	}
	return newWrapper(ref, spec, client, opts), nil
}

func newWrapper(ref Ref, spec *schema.EndpointSpec, caller Caller, opts Options) *Wrapper {
	if opts.Registry == nil {
		opts.Registry = content.DefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = func(format string, args ...interface{}) {}
	}
	return &Wrapper{
		ref:       ref,
		spec:      spec,
		objSchema: schema.ConvertEndpointToSchema(spec),
		caller:    caller,
		opts:      opts,
	}
}

// selectEndpoint applies the resolution heuristic: the explicit segment
// when it matches, then the preference list, then any named endpoint, then
// the first unnamed endpoint with at least one parameter and one return.
// Map iteration order is not discovery order, so ties break
// lexicographically (numerically for unnamed indices) to stay
// deterministic.
func selectEndpoint(owner, space string, api *gradio.AppAPI, explicit string) (Ref, *schema.EndpointSpec, error) {
	ref := Ref{Owner: owner, Space: space}

	if explicit != "" {
		if idx, err := strconv.Atoi(explicit); err == nil {
			key := strconv.Itoa(idx)
			if spec, ok := api.UnnamedEndpoints[key]; ok {
				ref.Index = idx
				return ref, spec, nil
			}
		}
		name := "/" + explicit
		if spec, ok := api.NamedEndpoints[name]; ok {
			ref.Name = name
			return ref, spec, nil
		}
	}

	for _, name := range preferredEndpoints {
		if spec, ok := api.NamedEndpoints[name]; ok {
			ref.Name = name
			return ref, spec, nil
		}
	}

	if len(api.NamedEndpoints) > 0 {
		names := make([]string, 0, len(api.NamedEndpoints))
		for name := range api.NamedEndpoints {
			names = append(names, name)
		}
		sort.Strings(names)
		ref.Name = names[0]
		return ref, api.NamedEndpoints[names[0]], nil
	}

	indices := make([]int, 0, len(api.UnnamedEndpoints))
	for key := range api.UnnamedEndpoints {
		if idx, err := strconv.Atoi(key); err == nil {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	for _, idx := range indices {
		spec := api.UnnamedEndpoints[strconv.Itoa(idx)]
		if len(spec.Parameters) > 0 && len(spec.Returns) > 0 {
			ref.Index = idx
			return ref, spec, nil
		}
	}

	return Ref{}, nil, &NoEndpointError{Space: owner + "/" + space}
}

// Ref returns the bound endpoint reference.
func (w *Wrapper) Ref() Ref { return w.ref }

// Spec returns the bound endpoint's discovery schema.
func (w *Wrapper) Spec() *schema.EndpointSpec { return w.spec }

func (w *Wrapper) target() gradio.EndpointTarget {
	if w.ref.Named() {
		return gradio.EndpointTarget{ApiName: w.ref.Name}
	}
	return gradio.EndpointTarget{FnIndex: w.ref.Index}
}

// ToolDefinition renders the bound endpoint as a host tool. The raw schema
// preserves parameter declaration order.
func (w *Wrapper) ToolDefinition() mcp.Tool {
	raw, err := json.Marshal(w.objSchema)
	if err != nil {
		raw = []byte(`{"type":"object","properties":{}}`)
	}
	desc := fmt.Sprintf("Call the %s of Space %s", w.ref.DisplayName(), w.ref.SpaceID())
	return mcp.NewToolWithRawSchema(w.ref.ToolName(), desc, raw)
}

// callState tracks the stream consumption state machine.
type callState int

const (
	stateAwaiting callState = iota
	stateStreaming
	stateTerminal
)

// HandleToolCall drives one invocation end to end. All failures are folded
// into an error-flagged result; the host always receives a structured
// response.
func (w *Wrapper) HandleToolCall(ctx context.Context, req mcp.CallToolRequest, notify NotifyFunc) (*mcp.CallToolResult, error) {
	blocks, err := w.call(ctx, req, notify)
	if err != nil {
		w.opts.Logger("call to %s failed: %v", w.ref.ToolName(), err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("Error calling endpoint: %v", err))},
			IsError: true,
		}, nil
	}
	return &mcp.CallToolResult{Content: blocks, IsError: false}, nil
}

func (w *Wrapper) call(ctx context.Context, req mcp.CallToolRequest, notify NotifyFunc) ([]mcp.Content, error) {
	var token any
	if req.Params.Meta != nil {
		token = req.Params.Meta.ProgressToken
	}

	data, err := w.buildData(req.GetArguments())
	if err != nil {
		return nil, err
	}

	stream, err := w.caller.Submit(ctx, w.target(), data)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	notifier := progress.NewNotifier()
	state := stateAwaiting
	var payload []any

	for state != stateTerminal {
		ev, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch ev.Type {
		case "data":
			state = stateStreaming
			// keep the last data event carrying something meaningful;
			// a trailing empty ack must not clobber a real result
			if hasMeaningfulElement(ev.Data) {
				payload = ev.Data
			}
		case "status":
			if ev.Status.Stage == gradio.StageError {
				return nil, &RemoteError{Message: ev.Status.Message}
			}
			if token != nil && notify != nil {
				n := notifier.Update(ev.Status)
				params := map[string]any{
					"progressToken": token,
					"progress":      n.Progress,
					"total":         n.Total,
					"message":       n.Message,
					"_meta":         ev.Status,
				}
				if err := notify(ctx, params); err != nil {
					w.opts.Logger("progress notification failed: %v", err)
				}
			}
			if ev.Status.Stage == gradio.StageComplete {
				state = stateTerminal
			}
		}
	}

	if payload == nil {
		return nil, ErrNoData
	}
	return w.convert(ctx, payload), nil
}

func hasMeaningfulElement(data []any) bool {
	for _, v := range data {
		if v != nil {
			return true
		}
	}
	return false
}

// buildData orders the argument map into the endpoint's positional array,
// substituting upload handles for validated file-like paths and declared
// defaults for omitted parameters.
func (w *Wrapper) buildData(args map[string]any) ([]any, error) {
	data := make([]any, 0, len(w.spec.Parameters))
	for i := range w.spec.Parameters {
		p := &w.spec.Parameters[i]
		value, supplied := argumentFor(args, p)
		if !supplied {
			data = append(data, p.ParameterDefault)
			continue
		}
		if s, ok := value.(string); ok && schema.IsFileParameter(p) {
			resolved, err := w.validateFilePath(s)
			if err != nil {
				return nil, &FilePathError{Parameter: parameterName(p), Err: err}
			}
			value = gradio.HandleFile(resolved)
		}
		data = append(data, value)
	}
	return data, nil
}

// argumentFor matches a supplied argument by wire-level name, then label.
func argumentFor(args map[string]any, p *schema.ParameterInfo) (any, bool) {
	if p.ParameterName != "" {
		if v, ok := args[p.ParameterName]; ok {
			return v, true
		}
	}
	if p.Label != "" {
		if v, ok := args[p.Label]; ok {
			return v, true
		}
	}
	return nil, false
}

func parameterName(p *schema.ParameterInfo) string {
	if p.ParameterName != "" {
		return p.ParameterName
	}
	return p.Label
}

// validateFilePath confines local paths to the working directory; URLs
// pass through unchecked.
func (w *Wrapper) validateFilePath(candidate string) (string, error) {
	if w.opts.Workdir == nil || workdir.IsURL(candidate) {
		return candidate, nil
	}
	return w.opts.Workdir.ValidatePath(candidate)
}

// convert pairs the payload positionally against the declared returns and
// converts each slot. Surplus values fall back to an anonymous descriptor.
func (w *Wrapper) convert(ctx context.Context, payload []any) []mcp.Content {
	cc := &content.CallContext{
		ToolName:    w.ref.ToolName(),
		Token:       w.opts.Token,
		DesktopMode: w.opts.DesktopMode,
		Workdir:     w.opts.Workdir,
		HTTPClient:  w.opts.HTTPClient,
		Logger:      w.opts.Logger,
	}
	blocks := make([]mcp.Content, 0, len(payload))
	for i, value := range payload {
		ret := &schema.ReturnInfo{}
		if i < len(w.spec.Returns) {
			ret = &w.spec.Returns[i]
		}
		blocks = append(blocks, w.opts.Registry.Convert(ctx, cc, ret, value))
	}
	return blocks
}
