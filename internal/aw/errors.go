package aw

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by the backend service.
type Error struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("backend: %s (%d %s)", e.Message, e.Code, e.Type)
	}
	return fmt.Sprintf("backend: %s (%d)", e.Message, e.Code)
}

// IsNotFound reports the service's "document not found" condition. It is an
// expected-path signal, not a true error: a missing chat document triggers
// lazy creation.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsConflict reports an already-exists condition, e.g. registering an email
// that has an account.
func IsConflict(err error) bool {
	return hasCode(err, http.StatusConflict)
}

// IsUnauthorized reports the distinguishable "unauthenticated" signal.
func IsUnauthorized(err error) bool {
	return hasCode(err, http.StatusUnauthorized)
}

func hasCode(err error, code int) bool {
	var svcErr *Error
	return errors.As(err, &svcErr) && svcErr.Code == code
}
