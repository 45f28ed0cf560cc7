// Package auth implements the account flows: register, login, logout and
// restoring the persisted session for subsequent commands.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/chattrix/chattrix/internal/aw"
	"github.com/chattrix/chattrix/internal/session"
	"github.com/chattrix/chattrix/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSession is returned when no login session is persisted locally.
var ErrNoSession = errors.New("not logged in")

// AccountAPI is the slice of the backend account surface auth needs,
// satisfied by *aw.Account.
type AccountAPI interface {
	Create(ctx context.Context, userID, email, password, name string) (*aw.User, error)
	CreateEmailSession(ctx context.Context, email, password string) (*aw.Session, error)
	Get(ctx context.Context) (*aw.User, error)
	DeleteCurrentSession(ctx context.Context) error
	UseSession(secret string)
}

// Service orchestrates account state between the backend and the local
// session file.
type Service struct {
	account  AccountAPI
	users    *store.UserStore
	sessions *session.Store
	logger   *zap.Logger
}

// NewService creates the auth service.
func NewService(account AccountAPI, users *store.UserStore, sessions *session.Store, logger *zap.Logger) *Service {
	return &Service{account: account, users: users, sessions: sessions, logger: logger}
}

// Register creates an account, logs it in, and stores the user's profile
// document keyed by the account ID.
func (s *Service) Register(ctx context.Context, email, password, username string) (*store.UserProfile, error) {
	user, err := s.account.Create(ctx, uuid.New().String(), email, password, username)
	if err != nil {
		if aw.IsConflict(err) {
			return nil, errors.New("this user already has an account, try logging in")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	sess, err := s.account.CreateEmailSession(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}

	profile := &store.UserProfile{UserID: user.ID, Email: user.Email, Name: username}
	if err := s.users.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("store user profile: %w", err)
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID))
	return profile, nil
}

// Login opens a session for an existing account and persists its token.
func (s *Service) Login(ctx context.Context, email, password string) (*aw.Session, error) {
	sess, err := s.account.CreateEmailSession(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.persist(sess); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", zap.String("user_id", sess.UserID))
	return sess, nil
}

// Logout deletes the current backend session and clears the local token.
// An already-expired session is reported as a friendly error after the
// local token is cleared anyway.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := s.Restore(ctx); err != nil {
		return err
	}
	if _, err := s.account.Get(ctx); err != nil {
		if aw.IsUnauthorized(err) {
			_ = s.sessions.Clear()
			return errors.New("user is already logged out or not authenticated")
		}
		return err
	}
	if err := s.account.DeleteCurrentSession(ctx); err != nil {
		return err
	}
	if err := s.sessions.Clear(); err != nil {
		return err
	}
	s.logger.Info("logged out")
	return nil
}

// Restore attaches the persisted session and returns the logged-in user ID
// without a network round trip. ErrNoSession when nobody is logged in.
func (s *Service) Restore(_ context.Context) (string, error) {
	st, err := s.sessions.Load()
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if st == nil {
		return "", ErrNoSession
	}
	s.account.UseSession(st.Secret)
	return st.UserID, nil
}

// CurrentUserID restores the session and verifies it against the backend,
// returning the authenticated account ID.
func (s *Service) CurrentUserID(ctx context.Context) (string, error) {
	if _, err := s.Restore(ctx); err != nil {
		return "", err
	}
	user, err := s.account.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("retrieve user session: %w", err)
	}
	return user.ID, nil
}

func (s *Service) persist(sess *aw.Session) error {
	err := s.sessions.Save(&session.State{
		UserID:    sess.UserID,
		SessionID: sess.ID,
		Secret:    sess.Secret,
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
