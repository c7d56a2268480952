// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Comment is attached to an event. IsMine is derived on the client from
// the session user and only gates the delete affordance; it is never
// treated as server truth.
type Comment struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"eventId,omitempty"`
	Content   string    `json:"content"`
	UserName  string    `json:"userName"`
	CreatedAt LocalTime `json:"createdAt"`
	IsMine    bool      `json:"isMine"`

	// LocalID tags an optimistic entry that has not been confirmed by the
	// server yet. Empty once the server-assigned ID is accepted.
	LocalID string `json:"-"`
}

// Confirmed reports whether the comment has a server-assigned identity.
func (c *Comment) Confirmed() bool {
	return c.LocalID == ""
}
