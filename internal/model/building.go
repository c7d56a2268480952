// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// Floor describes one level of a building.
type Floor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Building is immutable campus reference data loaded once per session.
// It has no approval state and is always placeable when its coordinates
// are usable.
type Building struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ShortName   string  `json:"shortName,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Description string  `json:"description,omitempty"`
	Departments string  `json:"departments,omitempty"`
	Facilities  string  `json:"facilities,omitempty"`
	OpenHours   string  `json:"openHours,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Floors      []Floor `json:"floors,omitempty"`
}

// Position returns the building's coordinates and whether they are usable.
func (b *Building) Position() (Position, bool) {
	pos := Position{Lat: b.Lat, Lon: b.Lon}
	return pos, pos.Valid()
}

// Matches reports whether the building matches a case-insensitive
// name search, used by the building list sidebar.
func (b *Building) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Name), q) ||
		strings.Contains(strings.ToLower(b.ShortName), q)
}
