package store

import (
	"context"
	"encoding/json"

	"github.com/chattrix/chattrix/internal/aw"
	"go.uber.org/zap"
)

// ChatStream adapts the backend's realtime channel into per-chat message
// sequences. Each change to the chat document yields its current messages
// array; the sync layer merges the last element exactly as the poller would.
type ChatStream struct {
	rt         RealtimeAPI
	databaseID string
	collection string
	logger     *zap.Logger
}

// NewChatStream creates a stream source for the given chat collection.
func NewChatStream(rt RealtimeAPI, databaseID, collectionID string, logger *zap.Logger) *ChatStream {
	return &ChatStream{rt: rt, databaseID: databaseID, collection: collectionID, logger: logger}
}

// Stream subscribes to the chat document's realtime channel. The returned
// channel closes when ctx is cancelled or the subscription drops.
func (s *ChatStream) Stream(ctx context.Context, chatID string) (<-chan []string, error) {
	channel := aw.DocumentChannel(s.databaseID, s.collection, chatID)
	payloads, err := s.rt.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}

	out := make(chan []string, 16)
	go func() {
		defer close(out)
		for payload := range payloads {
			var doc ChatDocument
			if err := json.Unmarshal(payload, &doc); err != nil {
				s.logger.Warn("realtime payload undecodable", zap.String("chat_id", chatID), zap.Error(err))
				continue
			}
			select {
			case out <- doc.Messages:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
