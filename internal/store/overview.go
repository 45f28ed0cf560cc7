package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chattrix/chattrix/internal/aw/query"
	"github.com/chattrix/chattrix/internal/record"
)

// BuildOverview returns one entry per chat involving userID, most recent
// conversation first. The ordering timestamp is extracted from the last
// message's embedded timestamp field; a chat whose last message is missing
// or undecodable sorts as if it were just updated. The sort is stable, so
// tied entries keep the store's document order across runs.
func (s *ChatStore) BuildOverview(ctx context.Context, userID string) ([]Overview, error) {
	q := []string{query.Or(
		query.Equal("senderID", userID),
		query.Equal("receiverID", userID),
	)}

	var docs []ChatDocument
	if err := s.db.List(ctx, s.collection, q, &docs); err != nil {
		return nil, fmt.Errorf("chat overview: %w", err)
	}

	overviews := make([]Overview, 0, len(docs))
	for _, doc := range docs {
		other := doc.ReceiverID
		if doc.SenderID != userID {
			other = doc.SenderID
		}

		last := NoMessages
		ts := time.Now().UnixMilli()
		if len(doc.Messages) > 0 {
			last = doc.Messages[len(doc.Messages)-1]
			ts = record.EpochMillis(last)
		}

		overviews = append(overviews, Overview{
			ChatID:      doc.ChatID,
			OtherUserID: other,
			LastMessage: last,
			Timestamp:   ts,
		})
	}

	sort.SliceStable(overviews, func(i, j int) bool {
		return overviews[i].Timestamp > overviews[j].Timestamp
	})
	return overviews, nil
}
