package gradio

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tsubasakong/mcp-hfspace/src/json"
)

// submitWS drives the legacy queue protocol older Spaces still speak: dial
// queue/join, answer the send_hash/send_data handshake, then relay queue
// messages until a terminal one arrives.
func (c *Client) submitWS(ctx context.Context, fnIdx int, data []any, session string) (EventStream, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/queue/join"

	hdr := http.Header{}
	c.applyAuth(hdr)

	dialer := &websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, hdr)
	if err != nil {
		return nil, err
	}

	ch := make(chan any)
	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				// closure marks end of stream
				return
			}
			var raw map[string]any
			if err := json.Unmarshal(msg, &raw); err != nil {
				c.logger("failed to unmarshal queue message: %v", err)
				continue
			}
			switch raw["msg"] {
			case "send_hash":
				payload, _ := json.Marshal(map[string]any{
					"fn_index":     fnIdx,
					"session_hash": session,
				})
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					ch <- err
					return
				}
			case "send_data":
				payload, _ := json.Marshal(map[string]any{
					"data":         data,
					"fn_index":     fnIdx,
					"session_hash": session,
				})
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					ch <- err
					return
				}
			default:
				events, done := normalizeMessage(raw)
				for _, ev := range events {
					ch <- ev
				}
				if done {
					return
				}
			}
		}
	}()

	return newChannelStream(ch, conn.Close), nil
}
