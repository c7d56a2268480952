// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nexus/campusmap/internal/model"
)

// State keys in the client_state table.
const (
	keyToken    = "token"
	keyUserID   = "user_id"
	keyUserName = "user_name"
	keyUserRole = "user_role"
	keyLanguage = "language"
)

// State is the persisted session: who is logged in, with what token,
// in which language.
type State struct {
	Token    string
	User     *model.User
	Language string
}

// LoggedIn reports whether the state carries a usable session.
func (s *State) LoggedIn() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Manager reads and writes the persisted client state.
type Manager struct {
	db *sql.DB
}

// NewManager creates a Manager over an opened, migrated database.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Save persists a session state, replacing any previous one.
func (m *Manager) Save(state State) error {
	values := map[string]string{
		keyToken:    state.Token,
		keyLanguage: state.Language,
	}
	if state.User != nil {
		values[keyUserID] = strconv.FormatInt(state.User.ID, 10)
		values[keyUserName] = state.User.Name
		values[keyUserRole] = string(state.User.Role)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range values {
		if _, err := tx.Exec(
			`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key, value,
		); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing state: %w", err)
	}
	return nil
}

// Load restores the persisted state. A missing or partial session comes
// back as a logged-out state rather than an error.
func (m *Manager) Load() (*State, error) {
	rows, err := m.db.Query(`SELECT key, value FROM client_state`)
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning state row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state rows: %w", err)
	}

	state := &State{
		Token:    values[keyToken],
		Language: values[keyLanguage],
	}

	idText, hasID := values[keyUserID]
	name := values[keyUserName]
	role := model.Role(values[keyUserRole])
	if state.Token != "" && hasID && name != "" && role.Valid() {
		id, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt user id %q: %w", idText, err)
		}
		state.User = &model.User{ID: id, Name: name, Role: role}
	}
	return state, nil
}

// Clear discards the persisted session, keeping only the language
// preference. Called on logout and on auth failure.
func (m *Manager) Clear() error {
	_, err := m.db.Exec(
		`DELETE FROM client_state WHERE key IN (?, ?, ?, ?)`,
		keyToken, keyUserID, keyUserName, keyUserRole,
	)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// SetLanguage persists only the preferred language.
func (m *Manager) SetLanguage(lang string) error {
	_, err := m.db.Exec(
		`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		keyLanguage, lang,
	)
	if err != nil {
		return fmt.Errorf("saving language: %w", err)
	}
	return nil
}

// ActivityEntry is one recorded diagnostic event.
type ActivityEntry struct {
	ID        int64
	Level     string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// RecordActivity appends a diagnostic entry. Used by the logging
// handler; failures are swallowed by the caller so logging can never
// take the client down.
func (m *Manager) RecordActivity(level, message, metadata string) error {
	if metadata == "" {
		metadata = "{}"
	}
	_, err := m.db.Exec(
		`INSERT INTO activity_log (level, message, metadata) VALUES (?, ?, ?)`,
		level, message, metadata,
	)
	return err
}

// RecentActivity returns up to limit entries, newest first.
func (m *Manager) RecentActivity(limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := m.db.Query(
		`SELECT id, level, message, metadata, created_at
		 FROM activity_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.Level, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("iterating activity rows: %w", err)
	}
	return entries, nil
}
