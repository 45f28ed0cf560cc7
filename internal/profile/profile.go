// Package profile manages the user's display name and avatar: account
// fields, the profile document, and the avatar blob in the storage bucket.
package profile

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/chattrix/chattrix/internal/aw"
	"github.com/chattrix/chattrix/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountAPI is the account surface the profile service needs.
type AccountAPI interface {
	UpdateName(ctx context.Context, name string) (*aw.User, error)
	GetPrefs(ctx context.Context) (map[string]any, error)
	UpdatePrefs(ctx context.Context, prefs map[string]any) (*aw.User, error)
}

// BlobAPI is the storage surface the profile service needs, satisfied by
// *aw.Storage.
type BlobAPI interface {
	CreateFile(ctx context.Context, fileID, name string, contents io.Reader) (string, error)
	DeleteFile(ctx context.Context, fileID string) error
	ViewURL(fileID string) string
}

// Service updates profile state across the three backend surfaces.
type Service struct {
	account AccountAPI
	blobs   BlobAPI
	users   *store.UserStore
	logger  *zap.Logger
}

// NewService creates the profile service.
func NewService(account AccountAPI, blobs BlobAPI, users *store.UserStore, logger *zap.Logger) *Service {
	return &Service{account: account, blobs: blobs, users: users, logger: logger}
}

// UploadAvatar stores a new avatar blob and points the account prefs and
// the profile document at it, returning the file ID.
func (s *Service) UploadAvatar(ctx context.Context, userID, name string, contents io.Reader) (string, error) {
	fileID, err := s.blobs.CreateFile(ctx, uuid.New().String(), name, contents)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if err := s.pointPrefsAt(ctx, fileID); err != nil {
		return "", err
	}
	if err := s.users.Update(ctx, userID, map[string]any{"avatarId": fileID}); err != nil {
		return "", fmt.Errorf("update profile document: %w", err)
	}
	return fileID, nil
}

// Update changes the display name and, when avatar is non-nil, replaces the
// stored avatar. The previous blob is deleted best-effort: a failed delete
// is logged and the update continues.
func (s *Service) Update(ctx context.Context, userID, name string, avatar io.Reader, avatarName, previousAvatarID string) error {
	if _, err := s.account.UpdateName(ctx, name); err != nil {
		return fmt.Errorf("update account name: %w", err)
	}

	payload := map[string]any{"name": name}
	if avatar != nil {
		if previousAvatarID != "" {
			if err := s.blobs.DeleteFile(ctx, previousAvatarID); err != nil {
				s.logger.Warn("could not delete previous avatar",
					zap.String("file_id", previousAvatarID), zap.Error(err))
			}
		}
		fileID, err := s.blobs.CreateFile(ctx, uuid.New().String(), avatarName, avatar)
		if err != nil {
			return fmt.Errorf("upload avatar: %w", err)
		}
		if err := s.pointPrefsAt(ctx, fileID); err != nil {
			return err
		}
		payload["avatarId"] = fileID
	}

	if err := s.users.Update(ctx, userID, payload); err != nil {
		return fmt.Errorf("update profile document: %w", err)
	}
	s.logger.Info("profile updated", zap.String("user_id", userID))
	return nil
}

// AvatarURL returns the retrieval URL for a stored avatar, or the initials
// fallback when the user has none.
func (s *Service) AvatarURL(endpoint string, p *store.UserProfile) string {
	if p.AvatarID != "" {
		return s.blobs.ViewURL(p.AvatarID)
	}
	return InitialsAvatarURL(endpoint, p.Name)
}

// InitialsAvatarURL builds the hosted service's generated initials avatar
// for a display name.
func InitialsAvatarURL(endpoint, name string) string {
	parts := strings.Fields(name)
	initials := name
	if len(parts) >= 2 {
		initials = parts[0] + "+" + parts[1]
	} else if len(parts) == 1 {
		initials = parts[0]
	}
	return strings.TrimSuffix(endpoint, "/") + "/avatars/initials?name=" +
		url.QueryEscape(initials) + "&width=64&height=64"
}

func (s *Service) pointPrefsAt(ctx context.Context, fileID string) error {
	prefs, err := s.account.GetPrefs(ctx)
	if err != nil {
		return fmt.Errorf("read prefs: %w", err)
	}
	prefs["avatarId"] = fileID
	if _, err := s.account.UpdatePrefs(ctx, prefs); err != nil {
		return fmt.Errorf("update prefs: %w", err)
	}
	return nil
}
