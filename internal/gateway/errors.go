// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Callers classify with
// errors.Is: auth failures force logout, validation failures surface
// to the user with local state unchanged, transport failures surface
// as a generic notice.
var (
	// ErrUnauthorized means the token is missing or expired. Never
	// retried; the session must be discarded.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the authenticated user lacks permission for
	// the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the entity does not exist on the server.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the server rejected the request payload.
	ErrValidation = errors.New("invalid request")

	// ErrUnavailable covers transport failures and server errors.
	ErrUnavailable = errors.New("service unavailable")
)

// StatusError carries the HTTP status and server-provided message for a
// failed request. It unwraps to the matching sentinel.
type StatusError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api status %d", e.Code)
}

// Unwrap maps the status code onto the failure taxonomy.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == 401:
		return ErrUnauthorized
	case e.Code == 403:
		return ErrForbidden
	case e.Code == 404:
		return ErrNotFound
	case e.Code >= 400 && e.Code < 500:
		return ErrValidation
	default:
		return ErrUnavailable
	}
}
