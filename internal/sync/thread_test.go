package sync

import (
	"testing"

	"github.com/chattrix/chattrix/internal/record"
)

func TestMergeDeduplicatesByTimestamp(t *testing.T) {
	th := NewThread()
	th.Load([]record.Record{
		{Text: "hello", Timestamp: "2025-01-01T10:00:00.000Z", SenderID: "a"},
	})

	// Same timestamp: no-op even though the body differs.
	if th.Merge(record.Record{Text: "different", Timestamp: "2025-01-01T10:00:00.000Z"}) {
		t.Error("Merge() appended a duplicate timestamp")
	}
	if th.Len() != 1 {
		t.Errorf("Len() = %d, want 1", th.Len())
	}

	// New timestamp: appended.
	if !th.Merge(record.Record{Text: "next", Timestamp: "2025-01-01T10:00:01.000Z"}) {
		t.Error("Merge() refused a new timestamp")
	}
	if th.Len() != 2 {
		t.Errorf("Len() = %d, want 2", th.Len())
	}
}

func TestMergeOnlyAppends(t *testing.T) {
	th := NewThread()
	stamps := []string{
		"2025-01-01T10:00:03.000Z",
		"2025-01-01T10:00:01.000Z",
		"2025-01-01T10:00:02.000Z",
	}
	for _, ts := range stamps {
		th.Merge(record.Record{Timestamp: ts})
	}

	recs := th.Records()
	for i, ts := range stamps {
		if recs[i].Timestamp != ts {
			t.Fatalf("arrival order disturbed: records[%d] = %q, want %q", i, recs[i].Timestamp, ts)
		}
	}
}

func TestLoadReplaces(t *testing.T) {
	th := NewThread()
	th.Merge(record.Record{Timestamp: "2025-01-01T10:00:00.000Z"})

	th.Load([]record.Record{
		{Timestamp: "2025-02-01T10:00:00.000Z"},
		{Timestamp: "2025-02-01T10:00:01.000Z"},
	})
	if th.Len() != 2 {
		t.Errorf("Len() = %d, want 2", th.Len())
	}
}

func TestRecordsReturnsCopy(t *testing.T) {
	th := NewThread()
	th.Merge(record.Record{Text: "original", Timestamp: "2025-01-01T10:00:00.000Z"})

	recs := th.Records()
	recs[0].Text = "mutated"

	if th.Records()[0].Text != "original" {
		t.Error("Records() exposed internal state")
	}
}
