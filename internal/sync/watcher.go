package sync

import (
	"context"
	"time"

	"github.com/chattrix/chattrix/internal/bus"
	"github.com/chattrix/chattrix/internal/record"
	"go.uber.org/zap"
)

// Streamer is the push alternative to Fetcher: it yields the chat's stored
// message sequence each time its document changes.
type Streamer interface {
	Stream(ctx context.Context, chatID string) (<-chan []string, error)
}

// Watcher applies the poller's merge semantics to a realtime subscription:
// each document change contributes only its last message, de-duplicated by
// timestamp against the thread.
type Watcher struct {
	chatID   string
	thread   *Thread
	streamer Streamer
	bus      *bus.Bus
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// NewWatcher creates a watcher over the given stream source.
func NewWatcher(chatID string, thread *Thread, streamer Streamer, b *bus.Bus, logger *zap.Logger) *Watcher {
	return &Watcher{
		chatID:   chatID,
		thread:   thread,
		streamer: streamer,
		bus:      b,
		logger:   logger,
	}
}

// Start opens the subscription and merges updates until Stop or context
// cancellation. A subscription that cannot be opened is returned as an
// error so the caller can fall back to polling.
func (w *Watcher) Start(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	updates, err := w.streamer.Stream(ctx, w.chatID)
	if err != nil {
		w.cancel()
		return err
	}

	go func() {
		for {
			select {
			case msgs, ok := <-updates:
				if !ok {
					return
				}
				w.merge(msgs)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop tears the subscription down.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Watcher) merge(msgs []string) {
	if len(msgs) == 0 {
		return
	}
	rec, err := record.Decode(msgs[len(msgs)-1])
	if err != nil {
		w.logger.Warn("realtime message undecodable", zap.String("chat_id", w.chatID), zap.Error(err))
		return
	}
	if w.thread.Merge(*rec) {
		w.logger.Info("message merged from realtime",
			zap.String("chat_id", w.chatID), zap.String("timestamp", rec.Timestamp))
		w.bus.Publish(bus.Event{Kind: EventThreadAppended, At: time.Now(), Payload: *rec})
	}
}
