// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store holds the in-memory entity collections: events,
// buildings, per-event comments and the session user. It is the single
// source of truth the visibility policy and the reconciler read from;
// only the controller writes to it.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nexus/campusmap/internal/model"
)

// Store is safe for concurrent use: the poller refreshes collections
// from a background goroutine while the controller reads.
type Store struct {
	mu        sync.RWMutex
	events    map[int64]model.Event
	buildings map[int64]model.Building
	comments  map[int64][]model.Comment
	user      *model.User
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		events:    make(map[int64]model.Event),
		buildings: make(map[int64]model.Building),
		comments:  make(map[int64][]model.Comment),
	}
}

// ReplaceEvents swaps in a wholesale re-fetched event collection.
// Comment lists for events that no longer exist are dropped.
func (s *Store) ReplaceEvents(events []model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[int64]model.Event, len(events))
	for _, ev := range events {
		s.events[ev.ID] = ev
	}
	for id := range s.comments {
		if _, ok := s.events[id]; !ok {
			delete(s.comments, id)
		}
	}
}

// Event returns the event with the given id.
func (s *Store) Event(id int64) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	return ev, ok
}

// Events returns all events ordered by creation time, newest first,
// matching the backend's list ordering.
func (s *Store) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	return out
}

// EventsOn returns events whose start (or creation, when undated) falls
// within the day of the given time, oldest first. Backs the schedule
// sidebar.
func (s *Store) EventsOn(day time.Time) []model.Event {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Event
	for _, ev := range s.events {
		at := ev.CreatedAt.Time
		if ev.StartsAt != nil && !ev.StartsAt.IsZero() {
			at = ev.StartsAt.Time
		}
		if !at.Before(dayStart) && at.Before(dayEnd) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpsertEvent inserts or replaces a single event.
func (s *Store) UpsertEvent(ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
}

// RemoveEvent deletes an event and its comment list. Returns whether
// the event existed.
func (s *Store) RemoveEvent(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[id]
	delete(s.events, id)
	delete(s.comments, id)
	return ok
}

// Likes returns the like count for an event.
func (s *Store) Likes(id int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	return ev.Likes, ok
}

// SetLikes overwrites an event's like count with an authoritative value.
func (s *Store) SetLikes(id int64, likes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := s.events[id]; ok {
		ev.Likes = likes
		s.events[id] = ev
	}
}

// AdjustLikes applies a relative like delta, used for the optimistic
// increment before the server confirms.
func (s *Store) AdjustLikes(id int64, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := s.events[id]; ok {
		ev.Likes += delta
		if ev.Likes < 0 {
			ev.Likes = 0
		}
		s.events[id] = ev
	}
}

// ReplaceBuildings swaps in the building reference data.
func (s *Store) ReplaceBuildings(buildings []model.Building) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings = make(map[int64]model.Building, len(buildings))
	for _, b := range buildings {
		s.buildings[b.ID] = b
	}
}

// Building returns the building with the given id.
func (s *Store) Building(id int64) (model.Building, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buildings[id]
	return b, ok
}

// Buildings returns all buildings sorted by name.
func (s *Store) Buildings() []model.Building {
	return s.SearchBuildings("")
}

// SearchBuildings returns buildings matching a case-insensitive name
// query, sorted by name. An empty query matches everything.
func (s *Store) SearchBuildings(query string) []model.Building {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Building, 0, len(s.buildings))
	for _, b := range s.buildings {
		if b.Matches(query) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// SetComments replaces the comment list of an event.
func (s *Store) SetComments(eventID int64, comments []model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[eventID] = append([]model.Comment(nil), comments...)
}

// Comments returns a copy of an event's comment list.
func (s *Store) Comments(eventID int64) []model.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Comment(nil), s.comments[eventID]...)
}

// AppendComment appends a comment to an event's list.
func (s *Store) AppendComment(eventID int64, c model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[eventID] = append(s.comments[eventID], c)
}

// ConfirmComment replaces the optimistic entry tagged localID with the
// server-confirmed comment. Returns whether the entry was found.
func (s *Store) ConfirmComment(eventID int64, localID string, confirmed model.Comment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.comments[eventID]
	for i := range list {
		if list[i].LocalID == localID {
			list[i] = confirmed
			return true
		}
	}
	return false
}

// DropLocalComment removes an optimistic entry after outright rejection.
func (s *Store) DropLocalComment(eventID int64, localID string) bool {
	return s.removeComment(eventID, func(c model.Comment) bool { return c.LocalID == localID })
}

// RemoveComment removes a confirmed comment by server id.
func (s *Store) RemoveComment(eventID, commentID int64) bool {
	return s.removeComment(eventID, func(c model.Comment) bool {
		return c.Confirmed() && c.ID == commentID
	})
}

func (s *Store) removeComment(eventID int64, match func(model.Comment) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.comments[eventID]
	for i := range list {
		if match(list[i]) {
			s.comments[eventID] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// SetUser stores the session user; nil clears it.
func (s *Store) SetUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	copied := *u
	s.user = &copied
}

// User returns the session user, or nil when logged out.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}
