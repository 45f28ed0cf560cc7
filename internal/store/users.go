package store

import (
	"context"
	"fmt"

	"github.com/chattrix/chattrix/internal/aw/query"
	"go.uber.org/zap"
)

// UserStore resolves user profile documents.
type UserStore struct {
	db         DocumentAPI
	collection string
	logger     *zap.Logger
}

// NewUserStore creates the adapter for the given users collection.
func NewUserStore(db DocumentAPI, collectionID string, logger *zap.Logger) *UserStore {
	return &UserStore{db: db, collection: collectionID, logger: logger}
}

// Get returns the profile whose userID field matches, or nil when no such
// profile exists. Lookup failures propagate for higher-level handling.
func (s *UserStore) Get(ctx context.Context, userID string) (*UserProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("empty user id")
	}
	var profiles []UserProfile
	if err := s.db.List(ctx, s.collection, []string{query.Equal("userID", userID)}, &profiles); err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// Create stores a new profile document keyed by the account ID.
func (s *UserStore) Create(ctx context.Context, p *UserProfile) error {
	data := map[string]any{
		"userID":   p.UserID,
		"email":    p.Email,
		"name":     p.Name,
		"avatarId": p.AvatarID,
	}
	return s.db.Create(ctx, s.collection, p.UserID, data, nil)
}

// Update patches the profile document keyed by userID.
func (s *UserStore) Update(ctx context.Context, userID string, data map[string]any) error {
	return s.db.Update(ctx, s.collection, userID, data)
}

// SearchByName returns profiles whose name matches the search text. Lookup
// failures degrade to an empty result.
func (s *UserStore) SearchByName(ctx context.Context, name string) []UserProfile {
	return s.search(ctx, query.Search("name", name))
}

// SearchByEmail returns at most one profile matching the email search.
func (s *UserStore) SearchByEmail(ctx context.Context, email string) []UserProfile {
	profiles := s.search(ctx, query.Search("email", email))
	if len(profiles) > 1 {
		profiles = profiles[:1]
	}
	return profiles
}

func (s *UserStore) search(ctx context.Context, q string) []UserProfile {
	var profiles []UserProfile
	if err := s.db.List(ctx, s.collection, []string{q}, &profiles); err != nil {
		s.logger.Warn("user search failed", zap.Error(err))
		return nil
	}
	return profiles
}
