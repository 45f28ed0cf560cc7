package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chattrix/chattrix/internal/bus"
	"github.com/chattrix/chattrix/internal/record"
	"go.uber.org/zap"
)

type fakeStreamer struct {
	ch  chan []string
	err error
}

func (f *fakeStreamer) Stream(_ context.Context, _ string) (<-chan []string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}

func TestWatcherMergesLastMessage(t *testing.T) {
	th := NewThread()
	b := bus.New()
	streamer := &fakeStreamer{ch: make(chan []string, 4)}

	events, cancelSub := b.Subscribe(EventThreadAppended, 10)
	defer cancelSub()

	w := NewWatcher("c1", th, streamer, b, zap.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	streamer.ch <- []string{
		record.Encode(&record.Record{Text: "old", Timestamp: "2025-01-01T10:00:00.000Z"}),
		record.Encode(&record.Record{Text: "new", Timestamp: "2025-01-01T10:00:05.000Z"}),
	}

	select {
	case evt := <-events:
		rec := evt.Payload.(record.Record)
		if rec.Text != "new" {
			t.Errorf("merged %q, want the last message", rec.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for merge")
	}

	// Same document state delivered again: de-duplicated.
	streamer.ch <- []string{
		record.Encode(&record.Record{Text: "new", Timestamp: "2025-01-01T10:00:05.000Z"}),
	}
	time.Sleep(50 * time.Millisecond)
	if th.Len() != 1 {
		t.Errorf("Len() = %d, want 1", th.Len())
	}
}

func TestWatcherSkipsUndecodableAndEmpty(t *testing.T) {
	th := NewThread()
	streamer := &fakeStreamer{ch: make(chan []string, 4)}

	w := NewWatcher("c1", th, streamer, bus.New(), zap.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	streamer.ch <- nil
	streamer.ch <- []string{"garbage {"}
	time.Sleep(50 * time.Millisecond)

	if th.Len() != 0 {
		t.Errorf("Len() = %d, want 0", th.Len())
	}
}

func TestWatcherStartFailure(t *testing.T) {
	streamer := &fakeStreamer{err: errors.New("dial failed")}

	w := NewWatcher("c1", NewThread(), streamer, bus.New(), zap.NewNop())
	if err := w.Start(context.Background()); err == nil {
		t.Error("Start() expected error when the subscription cannot open")
	}
}
