package gradio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tsubasakong/mcp-hfspace/src/json"
	"github.com/tsubasakong/mcp-hfspace/src/schema"
)

// Options configures a Space connection.
type Options struct {
	// Token is an opaque Hugging Face bearer token, attached to every
	// request when set.
	Token string
	// BaseURL overrides the derived https://{owner}-{space}.hf.space root.
	BaseURL string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
	Logger     func(format string, args ...interface{})
}

// Client talks to one Space.
type Client struct {
	space    string
	baseURL  string
	token    string
	http     *http.Client
	logger   func(format string, args ...interface{})
	protocol string
	fnIndex  map[string]int
	api      *AppAPI
}

// Connect builds a client for the given owner/space identifier. No network
// traffic happens until ViewAPI or Submit.
func Connect(space string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = func(format string, args ...interface{}) {}
	}
	base := opts.BaseURL
	if base == "" {
		base = SpaceURL(space)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		space:   space,
		baseURL: strings.TrimRight(base, "/"),
		token:   opts.Token,
		http:    httpClient,
		logger:  logger,
		fnIndex: make(map[string]int),
	}
}

// SpaceURL derives the hosted root for an owner/space identifier following
// the hf.space subdomain convention.
func SpaceURL(space string) string {
	sub := strings.ToLower(strings.ReplaceAll(space, "/", "-"))
	sub = strings.ReplaceAll(sub, "_", "-")
	sub = strings.ReplaceAll(sub, ".", "-")
	return fmt.Sprintf("https://%s.hf.space", sub)
}

// Space returns the owner/space identifier this client was built for.
func (c *Client) Space() string { return c.space }

type dependency struct {
	ID      *int   `json:"id"`
	APIName string `json:"api_name"`
}

type appConfig struct {
	Dependencies []dependency `json:"dependencies"`
	Protocol     string       `json:"protocol"`
	SpaceID      string       `json:"space_id"`
}

// ViewAPI fetches the Space's runtime config and endpoint schema. The
// result is cached for the client's lifetime.
func (c *Client) ViewAPI(ctx context.Context) (*AppAPI, error) {
	if c.api != nil {
		return c.api, nil
	}

	var cfg appConfig
	if err := c.getJSON(ctx, "/config", &cfg); err != nil {
		return nil, fmt.Errorf("fetching space config: %w", err)
	}
	c.protocol = cfg.Protocol
	for i, dep := range cfg.Dependencies {
		if dep.APIName == "" {
			continue
		}
		idx := i
		if dep.ID != nil {
			idx = *dep.ID
		}
		c.fnIndex["/"+dep.APIName] = idx
	}

	var api AppAPI
	if err := c.getJSON(ctx, "/info", &api); err != nil {
		return nil, fmt.Errorf("fetching space api info: %w", err)
	}
	if api.NamedEndpoints == nil {
		api.NamedEndpoints = map[string]*schema.EndpointSpec{}
	}
	if api.UnnamedEndpoints == nil {
		api.UnnamedEndpoints = map[string]*schema.EndpointSpec{}
	}
	c.api = &api
	c.logger("Discovered %d named and %d unnamed endpoints on %s",
		len(api.NamedEndpoints), len(api.UnnamedEndpoints), c.space)
	return c.api, nil
}

// fnIndexFor maps a target onto the function index the queue protocol
// addresses endpoints by.
func (c *Client) fnIndexFor(target EndpointTarget) (int, error) {
	if !target.Named() {
		return target.FnIndex, nil
	}
	name := target.ApiName
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	idx, ok := c.fnIndex[name]
	if !ok {
		return 0, fmt.Errorf("endpoint %q has no function index in the space config", target.ApiName)
	}
	return idx, nil
}

// Submit enqueues a call and returns the stream of data/status events it
// produces. data must already be in the endpoint's positional order.
func (c *Client) Submit(ctx context.Context, target EndpointTarget, data []any) (EventStream, error) {
	fnIdx, err := c.fnIndexFor(target)
	if err != nil {
		return nil, err
	}
	session := sessionHash()

	if c.protocol == "ws" {
		return c.submitWS(ctx, fnIdx, data, session)
	}
	return c.submitSSE(ctx, fnIdx, data, session)
}

// sessionHash generates the 11-character session identifier the queue
// correlates a submission's messages by.
func sessionHash() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:11]
}

// submitSSE joins the queue over HTTP and consumes /queue/data as SSE.
func (c *Client) submitSSE(ctx context.Context, fnIdx int, data []any, session string) (EventStream, error) {
	join := map[string]any{
		"data":         data,
		"event_data":   nil,
		"fn_index":     fnIdx,
		"session_hash": session,
	}
	body, err := json.Marshal(join)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/queue/join", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyAuth(req.Header)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("queue join error: %s: %s", resp.Status, string(b))
	}
	resp.Body.Close()

	streamReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/queue/data?session_hash="+session, nil)
	if err != nil {
		return nil, err
	}
	streamReq.Header.Set("Accept", "text/event-stream")
	c.applyAuth(streamReq.Header)
	streamResp, err := c.http.Do(streamReq)
	if err != nil {
		return nil, err
	}
	if streamResp.StatusCode < 200 || streamResp.StatusCode >= 300 {
		b, _ := io.ReadAll(streamResp.Body)
		streamResp.Body.Close()
		return nil, fmt.Errorf("queue data error: %s: %s", streamResp.Status, string(b))
	}

	ch := make(chan any)
	go c.readSSE(streamResp.Body, ch)
	return newChannelStream(ch, streamResp.Body.Close), nil
}

func (c *Client) applyAuth(h http.Header) {
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}

// getJSON fetches a path and decodes the JSON response, failing fast on
// non-2xx status codes.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.applyAuth(req.Header)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
