package gradio

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cast"

	"github.com/tsubasakong/mcp-hfspace/src/json"
)

// readSSE consumes a queue event-stream, pushing normalized events onto ch.
// The channel is closed when the stream ends, errors, or the queue signals
// close_stream.
func (c *Client) readSSE(body io.ReadCloser, ch chan<- any) {
	defer close(ch)
	defer body.Close()

	reader := bufio.NewReader(body)
	var dataBuf strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				ch <- err
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")

		// blank line terminates one event; decode accumulated data
		if line == "" {
			if dataBuf.Len() > 0 {
				payload := dataBuf.String()
				dataBuf.Reset()
				var raw map[string]any
				if err := json.Unmarshal([]byte(payload), &raw); err != nil {
					c.logger("failed to unmarshal queue message: %v", err)
					continue
				}
				events, done := normalizeMessage(raw)
				for _, ev := range events {
					ch <- ev
				}
				if done {
					return
				}
			}
			continue
		}

		if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(line[len("data: "):])
		}
	}
}

// normalizeMessage maps one raw queue message onto zero or more stream
// events. done reports that the submission reached a terminal message and
// the stream should end.
func normalizeMessage(raw map[string]any) (events []*Event, done bool) {
	switch cast.ToString(raw["msg"]) {
	case "estimation":
		events = append(events, statusEvent(&StatusUpdate{
			Stage:    StagePending,
			Queue:    true,
			Position: rankOf(raw),
		}))

	case "queue_full":
		events = append(events, statusEvent(&StatusUpdate{
			Stage:    StageError,
			Message:  "Queue is full",
			Queue:    true,
			Position: rankOf(raw),
		}))
		done = true

	case "process_starts":
		events = append(events, statusEvent(&StatusUpdate{
			Stage:    StagePending,
			Position: -1,
		}))

	case "progress":
		events = append(events, statusEvent(&StatusUpdate{
			Stage:    StageGenerating,
			Position: -1,
			Progress: progressUnits(raw["progress_data"]),
		}))

	case "process_generating":
		events = append(events,
			statusEvent(&StatusUpdate{Stage: StageGenerating, Position: -1}),
			&Event{Type: "data", Data: outputData(raw)})

	case "process_completed":
		if success, ok := raw["success"].(bool); ok && !success {
			events = append(events, statusEvent(&StatusUpdate{
				Stage:    StageError,
				Message:  outputError(raw),
				Position: -1,
			}))
			done = true
			break
		}
		events = append(events,
			&Event{Type: "data", Data: outputData(raw)},
			statusEvent(&StatusUpdate{Stage: StageComplete, Position: -1}))
		done = true

	case "unexpected_error":
		events = append(events, statusEvent(&StatusUpdate{
			Stage:    StageError,
			Message:  cast.ToString(raw["message"]),
			Position: -1,
		}))
		done = true

	case "close_stream":
		done = true
	}
	return events, done
}

func statusEvent(s *StatusUpdate) *Event {
	return &Event{Type: "status", Status: s}
}

func rankOf(raw map[string]any) int {
	if _, ok := raw["rank"]; !ok {
		return -1
	}
	return cast.ToInt(raw["rank"])
}

func outputData(raw map[string]any) []any {
	output, _ := raw["output"].(map[string]any)
	data, _ := output["data"].([]any)
	return data
}

func outputError(raw map[string]any) string {
	output, _ := raw["output"].(map[string]any)
	if msg := cast.ToString(output["error"]); msg != "" {
		return msg
	}
	return cast.ToString(raw["message"])
}

// progressUnits decodes the step-progress records a progress message
// carries. Missing lengths come through as zero.
func progressUnits(v any) []ProgressUnit {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	units := make([]ProgressUnit, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		units = append(units, ProgressUnit{
			Index:  cast.ToInt(m["index"]),
			Length: cast.ToInt(m["length"]),
			Unit:   cast.ToString(m["unit"]),
			Desc:   cast.ToString(m["desc"]),
		})
	}
	return units
}
