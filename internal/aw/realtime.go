package aw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Realtime subscribes to document-level change events over the service's
// WebSocket endpoint. It is the push alternative to polling an open chat.
type Realtime struct {
	client *Client
	logger *zap.Logger
}

// NewRealtime creates the realtime service.
func NewRealtime(c *Client, logger *zap.Logger) *Realtime {
	return &Realtime{client: c, logger: logger}
}

// DocumentChannel names the realtime channel for one document.
func DocumentChannel(databaseID, collectionID, documentID string) string {
	return fmt.Sprintf("databases.%s.collections.%s.documents.%s", databaseID, collectionID, documentID)
}

type realtimeFrame struct {
	Type string `json:"type"`
	Data struct {
		Channels []string        `json:"channels"`
		Events   []string        `json:"events"`
		Payload  json.RawMessage `json:"payload"`
	} `json:"data"`
}

// Subscribe opens a WebSocket subscription on the given channel and yields
// each event's document payload. The channel closes when ctx is cancelled or
// the connection drops; reconnection is the caller's choice.
func (r *Realtime) Subscribe(ctx context.Context, channel string) (<-chan json.RawMessage, error) {
	u := websocketURL(r.client.Endpoint()) + "/realtime?project=" +
		url.QueryEscape(r.client.Project()) + "&channels[]=" + url.QueryEscape(channel)

	conn, _, err := websocket.Dial(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("realtime dial: %w", err)
	}
	conn.SetReadLimit(1 << 20)

	out := make(chan json.RawMessage, 16)
	go func() {
		defer close(out)
		defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()
		for {
			var frame realtimeFrame
			if err := wsjson.Read(ctx, conn, &frame); err != nil {
				if ctx.Err() == nil {
					r.logger.Warn("realtime read failed", zap.String("channel", channel), zap.Error(err))
				}
				return
			}
			if frame.Type != "event" {
				continue
			}
			select {
			case out <- frame.Data.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func websocketURL(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	default:
		return endpoint
	}
}
