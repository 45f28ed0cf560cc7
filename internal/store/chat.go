package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/chattrix/chattrix/internal/aw"
	"github.com/chattrix/chattrix/internal/aw/query"
	"github.com/chattrix/chattrix/internal/record"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSubmitFailed wraps any non-not-found failure while writing a message.
// It propagates to the compose path, which must surface it to the user.
var ErrSubmitFailed = errors.New("message submit failed")

// ChatStore is the message store adapter over the chat collection.
type ChatStore struct {
	db         DocumentAPI
	collection string
	logger     *zap.Logger
}

// NewChatStore creates the adapter for the given chat collection.
func NewChatStore(db DocumentAPI, collectionID string, logger *zap.Logger) *ChatStore {
	return &ChatStore{db: db, collection: collectionID, logger: logger}
}

// Append serializes rec onto the chat's message sequence. A missing document
// is created lazily with exactly the new message. On both paths the
// document's senderID/receiverID are set from the record, so those fields
// track the last message's direction.
func (s *ChatStore) Append(ctx context.Context, chatID string, rec *record.Record) error {
	encoded := record.Encode(rec)

	var doc ChatDocument
	err := s.db.Get(ctx, s.collection, chatID, &doc)
	if err == nil {
		update := map[string]any{
			"messages":   append(doc.Messages, encoded),
			"senderID":   rec.SenderID,
			"receiverID": rec.ReceiverID,
		}
		if err := s.db.Update(ctx, s.collection, chatID, update); err != nil {
			return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
		}
		return nil
	}
	if !aw.IsNotFound(err) {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	// First message for this chat: create the document lazily.
	data := map[string]any{
		"chatID":     chatID,
		"messages":   []string{encoded},
		"senderID":   rec.SenderID,
		"receiverID": rec.ReceiverID,
	}
	if err := s.db.Create(ctx, s.collection, chatID, data, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	return nil
}

// LoadAll returns the chat's full message sequence in stored order. A
// missing document is "no messages", never an error; other lookup failures
// are logged and degrade to an empty sequence.
func (s *ChatStore) LoadAll(ctx context.Context, chatID string) []string {
	var doc ChatDocument
	if err := s.db.Get(ctx, s.collection, chatID, &doc); err != nil {
		if !aw.IsNotFound(err) {
			s.logger.Warn("chat lookup failed", zap.String("chat_id", chatID), zap.Error(err))
		}
		return nil
	}
	return doc.Messages
}

// LoadLatest returns the decoded last message of the chat, or nil when the
// chat has no messages, does not exist, or its last entry is undecodable.
func (s *ChatStore) LoadLatest(ctx context.Context, chatID string) *record.Record {
	msgs := s.LoadAll(ctx, chatID)
	if len(msgs) == 0 {
		return nil
	}
	rec, err := record.Decode(msgs[len(msgs)-1])
	if err != nil {
		s.logger.Warn("latest message undecodable", zap.String("chat_id", chatID), zap.Error(err))
		return nil
	}
	return rec
}

// FindAllBetween returns every message exchanged between the two users, in
// either direction, flattened across all matching chat documents. Document
// boundaries are not preserved. For a self-chat (userA == userB) the
// sender-differs-from-receiver exclusion is skipped so the conversation is
// still retrievable.
func (s *ChatStore) FindAllBetween(ctx context.Context, userA, userB string) []string {
	queries := []string{pairQuery(userA, userB)}
	if userA != userB {
		queries = append(queries, query.NotEqual("senderID", "receiverID"))
	}

	var docs []ChatDocument
	if err := s.db.List(ctx, s.collection, queries, &docs); err != nil {
		s.logger.Warn("message query failed",
			zap.String("user_a", userA), zap.String("user_b", userB), zap.Error(err))
		return nil
	}

	var all []string
	for _, doc := range docs {
		all = append(all, doc.Messages...)
	}
	return all
}

// FindOrCreateChat returns the identifier of the chat between the two users,
// creating an empty document when none exists. Safe to call repeatedly for
// the same pair under sequential use; concurrent callers may still race to
// create (no locking, concurrency control is the backend's).
func (s *ChatStore) FindOrCreateChat(ctx context.Context, userA, userB string) (string, error) {
	var docs []ChatDocument
	if err := s.db.List(ctx, s.collection, []string{pairQuery(userA, userB)}, &docs); err != nil {
		return "", fmt.Errorf("find chat: %w", err)
	}
	if len(docs) > 0 {
		return docs[0].ID, nil
	}

	chatID := uuid.New().String()
	data := map[string]any{
		"chatID":     chatID,
		"senderID":   userA,
		"receiverID": userB,
	}
	if err := s.db.Create(ctx, s.collection, chatID, data, nil); err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	s.logger.Info("chat created", zap.String("chat_id", chatID))
	return chatID, nil
}

// pairQuery matches documents whose participant pair is (a,b) or (b,a).
func pairQuery(a, b string) string {
	return query.Or(
		query.And(query.Equal("senderID", a), query.Equal("receiverID", b)),
		query.And(query.Equal("senderID", b), query.Equal("receiverID", a)),
	)
}
