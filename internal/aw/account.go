package aw

import (
	"context"
	"net/http"
)

// User is the service's view of an account.
type User struct {
	ID    string         `json:"$id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Prefs map[string]any `json:"prefs"`
}

// Session is an authenticated login session. Secret is only populated on
// creation and must be persisted by the caller.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// Account wraps the session/identity surface of the service.
type Account struct {
	client *Client
}

// NewAccount creates the account service.
func NewAccount(c *Client) *Account {
	return &Account{client: c}
}

// UseSession attaches a previously persisted session secret.
func (a *Account) UseSession(secret string) {
	a.client.SetSession(secret)
}

// Create registers a new account.
func (a *Account) Create(ctx context.Context, userID, email, password, name string) (*User, error) {
	body := map[string]string{
		"userId":   userID,
		"email":    email,
		"password": password,
		"name":     name,
	}
	var user User
	if err := a.client.call(ctx, http.MethodPost, "/account", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateEmailSession logs in with email and password.
func (a *Account) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var sess Session
	if err := a.client.call(ctx, http.MethodPost, "/account/sessions/email", nil, body, &sess); err != nil {
		return nil, err
	}
	a.client.SetSession(sess.Secret)
	return &sess, nil
}

// Get returns the authenticated account, or an unauthorized error when no
// valid session is attached.
func (a *Account) Get(ctx context.Context) (*User, error) {
	var user User
	if err := a.client.call(ctx, http.MethodGet, "/account", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteCurrentSession logs the current session out.
func (a *Account) DeleteCurrentSession(ctx context.Context) error {
	return a.client.call(ctx, http.MethodDelete, "/account/sessions/current", nil, nil, nil)
}

// UpdateName changes the account display name.
func (a *Account) UpdateName(ctx context.Context, name string) (*User, error) {
	var user User
	if err := a.client.call(ctx, http.MethodPatch, "/account/name", nil, map[string]string{"name": name}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetPrefs returns the account preference blob.
func (a *Account) GetPrefs(ctx context.Context) (map[string]any, error) {
	var prefs map[string]any
	if err := a.client.call(ctx, http.MethodGet, "/account/prefs", nil, nil, &prefs); err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = map[string]any{}
	}
	return prefs, nil
}

// UpdatePrefs replaces the account preference blob.
func (a *Account) UpdatePrefs(ctx context.Context, prefs map[string]any) (*User, error) {
	var user User
	if err := a.client.call(ctx, http.MethodPatch, "/account/prefs", nil, map[string]any{"prefs": prefs}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
