// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ApprovalStatus is the moderation state of an event.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
)

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the position is finite and within coordinate range.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Event is a user-submitted campus event shown on the map.
// Coordinates are pointers because the backend may omit them; entities
// without a usable position are kept in the store but never placed.
type Event struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Lat            *float64       `json:"lat"`
	Lon            *float64       `json:"lon"`
	StartsAt       *LocalTime     `json:"startsAt,omitempty"`
	EndsAt         *LocalTime     `json:"endsAt,omitempty"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	CreatorID      int64          `json:"creatorId"`
	CreatorName    string         `json:"creatorName"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	Likes          int            `json:"likes"`
	CreatedAt      LocalTime      `json:"createdAt"`
}

// Position returns the event's coordinates and whether they are usable.
func (e *Event) Position() (Position, bool) {
	if e.Lat == nil || e.Lon == nil {
		return Position{}, false
	}
	pos := Position{Lat: *e.Lat, Lon: *e.Lon}
	return pos, pos.Valid()
}

// Approved reports whether the event passed moderation.
func (e *Event) Approved() bool {
	return e.ApprovalStatus == ApprovalApproved
}

// localTimeLayouts are the timestamp layouts the backend is known to emit.
// The Java backend serializes LocalDateTime without a zone offset, and the
// event form submits minute precision.
var localTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// FormLayout is the layout used for datetime form fields in multipart submissions.
const FormLayout = "2006-01-02T15:04"

// LocalTime is a time.Time that tolerates the backend's zone-less timestamps.
type LocalTime struct {
	time.Time
}

// NewLocalTime wraps a time.Time.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range localTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + t.Time.Format("2006-01-02T15:04:05") + `"`), nil
}
