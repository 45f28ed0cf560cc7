package sync

import (
	"context"
	"time"

	"github.com/chattrix/chattrix/internal/bus"
	"github.com/chattrix/chattrix/internal/record"
	"go.uber.org/zap"
)

// EventThreadAppended is published whenever a fetched message merges into
// the open thread.
const EventThreadAppended = "thread.appended"

// Fetcher retrieves the most recent message of a chat. A nil record means
// nothing to merge (no messages, missing chat, or a transient failure that
// the next tick retries).
type Fetcher interface {
	LoadLatest(ctx context.Context, chatID string) *record.Record
}

// Syncer keeps a thread current while its view is open. Start runs until
// Stop or context cancellation; Stop is unconditional on view teardown.
type Syncer interface {
	Start(ctx context.Context) error
	Stop()
}

// Poller re-fetches the open chat's latest message on a fixed interval and
// merges it into the thread.
type Poller struct {
	chatID   string
	thread   *Thread
	fetcher  Fetcher
	interval time.Duration
	bus      *bus.Bus
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// NewPoller creates a poller. A non-positive interval falls back to 2s.
func NewPoller(chatID string, thread *Thread, fetcher Fetcher, interval time.Duration, b *bus.Bus, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		chatID:   chatID,
		thread:   thread,
		fetcher:  fetcher,
		interval: interval,
		bus:      b,
		logger:   logger,
	}
}

// Start begins ticking. The loop owns no state beyond the tick timer, so a
// stopped poller leaves the thread exactly as the last merge left it.
func (p *Poller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)
	go p.loop(ctx)
	return nil
}

// Stop cancels the tick loop.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	rec := p.fetcher.LoadLatest(ctx, p.chatID)
	if rec == nil {
		return
	}
	if p.thread.Merge(*rec) {
		p.logger.Info("message merged from poll",
			zap.String("chat_id", p.chatID), zap.String("timestamp", rec.Timestamp))
		p.bus.Publish(bus.Event{Kind: EventThreadAppended, At: time.Now(), Payload: *rec})
	}
}
