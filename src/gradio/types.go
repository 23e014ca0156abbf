// Package gradio is a minimal client for Gradio-powered Spaces: schema
// discovery over /config and /info, and queued submissions streamed back
// over SSE or the legacy websocket protocol.
package gradio

import (
	"io"

	"github.com/tsubasakong/mcp-hfspace/src/schema"
)

// Stage is the lifecycle tag a status event carries.
type Stage string

const (
	StagePending    Stage = "pending"
	StageGenerating Stage = "generating"
	StageComplete   Stage = "complete"
	StageError      Stage = "error"
)

// ProgressUnit is one step-progress record inside a status event.
type ProgressUnit struct {
	Index  int    `json:"index"`
	Length int    `json:"length"`
	Unit   string `json:"unit,omitempty"`
	Desc   string `json:"desc,omitempty"`
}

// StatusUpdate is the normalized form of a queue status message.
// Position is -1 when the queue rank is unknown.
type StatusUpdate struct {
	Stage    Stage          `json:"stage"`
	Message  string         `json:"message,omitempty"`
	Queue    bool           `json:"queue"`
	Position int            `json:"position"`
	Progress []ProgressUnit `json:"progress_data,omitempty"`
}

// Event is one element of a submission's event stream: either a data
// payload or a status update.
type Event struct {
	Type   string        `json:"type"` // "data" or "status"
	Data   []any         `json:"data,omitempty"`
	Status *StatusUpdate `json:"status,omitempty"`
}

// AppAPI is the discovery result for one Space: endpoints addressable by
// name, and endpoints only addressable by function index.
type AppAPI struct {
	NamedEndpoints   map[string]*schema.EndpointSpec `json:"named_endpoints"`
	UnnamedEndpoints map[string]*schema.EndpointSpec `json:"unnamed_endpoints"`
}

// EndpointTarget selects one endpoint for submission: by API name when
// ApiName is set, by function index otherwise.
type EndpointTarget struct {
	ApiName string
	FnIndex int
}

// Named reports whether the target addresses the endpoint by name.
func (t EndpointTarget) Named() bool { return t.ApiName != "" }

// EventStream yields the events of one submission in stream order.
// Next returns io.EOF once the stream is exhausted.
type EventStream interface {
	Next() (*Event, error)
	Close() error
}

// channelStream adapts a channel of events (or errors) into an EventStream.
type channelStream struct {
	ch      <-chan any
	closeFn func() error
}

func newChannelStream(ch <-chan any, closeFn func() error) EventStream {
	return &channelStream{ch: ch, closeFn: closeFn}
}

func (s *channelStream) Next() (*Event, error) {
	item, ok := <-s.ch
	if !ok {
		return nil, io.EOF
	}
	if err, isErr := item.(error); isErr {
		return nil, err
	}
	return item.(*Event), nil
}

func (s *channelStream) Close() error {
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

// sliceStream replays a fixed event sequence; used by tests.
type sliceStream struct {
	items []*Event
	index int
}

// NewSliceStream returns an EventStream over a fixed slice of events.
func NewSliceStream(items []*Event) EventStream {
	return &sliceStream{items: items}
}

func (s *sliceStream) Next() (*Event, error) {
	if s.index >= len(s.items) {
		return nil, io.EOF
	}
	item := s.items[s.index]
	s.index++
	return item, nil
}

func (s *sliceStream) Close() error { return nil }
