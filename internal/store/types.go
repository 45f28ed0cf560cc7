// Package store adapts the backend's document collections into the chat
// operations the client needs: appending messages, loading history, building
// the chat overview, and resolving user profiles. All durable state lives in
// the backend; nothing here persists locally.
package store

import (
	"context"
	"encoding/json"
)

// DocumentAPI is the slice of the backend document surface the stores use.
// *aw.Databases satisfies it; tests substitute an in-memory fake.
type DocumentAPI interface {
	List(ctx context.Context, collectionID string, queries []string, out any) error
	Get(ctx context.Context, collectionID, documentID string, out any) error
	Create(ctx context.Context, collectionID, documentID string, data any, out any) error
	Update(ctx context.Context, collectionID, documentID string, data any) error
}

// RealtimeAPI is the push-subscription surface, satisfied by *aw.Realtime.
type RealtimeAPI interface {
	Subscribe(ctx context.Context, channel string) (<-chan json.RawMessage, error)
}

// ChatDocument mirrors the chat collection's schema. SenderID and ReceiverID
// are the document's denormalized participant fields: they always reflect
// the direction of the last appended message, not the original pair order.
type ChatDocument struct {
	ID         string   `json:"$id"`
	ChatID     string   `json:"chatID"`
	SenderID   string   `json:"senderID"`
	ReceiverID string   `json:"receiverID"`
	Messages   []string `json:"messages"`
}

// UserProfile mirrors the users collection's schema.
type UserProfile struct {
	ID       string `json:"$id"`
	UserID   string `json:"userID"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	AvatarID string `json:"avatarId"`
}

// Overview is a per-chat summary used to render the chat list: the
// counterpart, the most recent raw message blob (or the sentinel when the
// chat is empty), and a millisecond timestamp for ordering. It is recomputed
// on every fetch and has no identity beyond one render.
type Overview struct {
	ChatID      string
	OtherUserID string
	LastMessage string
	Timestamp   int64
}

// NoMessages is the overview sentinel for a chat without messages.
const NoMessages = "No messages yet"
