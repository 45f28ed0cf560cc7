// Package record implements the wire codec for chat messages. Messages are
// stored inside a chat document as JSON-encoded strings; older clients wrote
// loosely formed text (bare keys, trailing commas, escaped quotes), so the
// decoder repairs before parsing. The encoder only ever emits the canonical
// form.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Message status values carried on the wire.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// ErrDecode marks stored text that could not be interpreted as a message.
// Callers skip the affected entry; this is never a crash condition.
var ErrDecode = errors.New("undecodable message record")

// Record is the structured form of one chat message.
type Record struct {
	Text       string
	Timestamp  string // ISO-8601 instant
	SenderID   string
	ReceiverID string
	Status     string
}

// wire is the exact JSON shape stored inside a chat document's messages
// array. Key names and order are load-bearing: existing documents were
// written with these bytes, and the overview builder pattern-matches on the
// timestamp field's position.
type wire struct {
	Message    string `json:"Message"`
	Timestamp  string `json:"timestamp"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Status     string `json:"status"`
}

// timestampPattern matches the timestamp field as written by Encode. The
// trailing comma is intentional: timestamp is never the last key on the wire,
// and stripping the match must leave the remainder parseable.
var timestampPattern = regexp.MustCompile(`"timestamp":\s*"([^"]+)",`)

// bareKeyPattern quotes keys stored without quotes. Properly quoted keys are
// untouched because their closing quote sits between the word and the colon.
// A colon-adjacent word inside a message body is also rewritten; that is a
// known limitation of the repair step, not a parser.
var bareKeyPattern = regexp.MustCompile(`(\w+):`)

var trailingCommaPattern = regexp.MustCompile(`,\s*}`)

// Encode serializes a record into its canonical wire form. An empty status
// is written as pending so the stored blob is always complete.
func Encode(r *Record) string {
	w := wire{
		Message:    r.Text,
		Timestamp:  r.Timestamp,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Status:     r.Status,
	}
	if w.Status == "" {
		w.Status = StatusPending
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a flat string struct cannot fail.
	_ = enc.Encode(w)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Decode interprets one stored blob. It is total over its input: malformed
// text yields an ErrDecode-wrapped error, never a panic, and missing fields
// degrade to defaults (empty participants, pending status, current instant
// for a missing timestamp).
func Decode(raw string) (*Record, error) {
	ts := Stamp(time.Now())
	stripped := raw
	if m := timestampPattern.FindStringSubmatch(raw); m != nil {
		ts = m[1]
		stripped = timestampPattern.ReplaceAllString(raw, "")
	}

	repaired := strings.ReplaceAll(stripped, "\n", "")
	repaired = bareKeyPattern.ReplaceAllString(repaired, `"$1":`)
	repaired = trailingCommaPattern.ReplaceAllString(repaired, "}")
	repaired = strings.ReplaceAll(repaired, `\"`, `"`)

	var w wire
	if err := json.Unmarshal([]byte(repaired), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	status := w.Status
	switch status {
	case StatusPending, StatusDelivered, StatusRead:
	default:
		status = StatusPending
	}

	return &Record{
		Text:       w.Message,
		Timestamp:  ts,
		SenderID:   w.SenderID,
		ReceiverID: w.ReceiverID,
		Status:     status,
	}, nil
}

// DecodeAll decodes a stored message sequence. Entries that fail to decode
// are dropped; the rest of the batch survives.
func DecodeAll(raws []string) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := Decode(raw)
		if err != nil {
			continue
		}
		records = append(records, *rec)
	}
	return records
}

// EpochMillis extracts the embedded timestamp of a raw blob as epoch
// milliseconds, for ordering chats by recency. A blob with a missing or
// malformed timestamp sorts as if it were just updated.
func EpochMillis(raw string) int64 {
	if m := timestampPattern.FindStringSubmatch(raw); m != nil {
		if t, err := time.Parse(time.RFC3339, m[1]); err == nil {
			return t.UnixMilli()
		}
	}
	return time.Now().UnixMilli()
}

// Stamp formats an instant the way the wire expects: UTC with millisecond
// precision.
func Stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
