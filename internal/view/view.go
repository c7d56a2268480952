// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package view holds the mutually exclusive view-mode state machine:
// building info, external directions, or the event map. The multiplexer
// owns only the mode and the directions payload; overlay groups are
// attached and detached by the transition listener.
package view

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/nexus/campusmap/internal/model"
)

// Mode is one of the three mutually exclusive views.
type Mode int

const (
	ModeBuilding Mode = iota
	ModeDirections
	ModeEvents
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeBuilding:
		return "building"
	case ModeDirections:
		return "directions"
	case ModeEvents:
		return "events"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// directionsBase is the external navigation service. The target path is
// /link/to/{encoded title},{lat},{lon}, matching the provider's deep
// link format.
const directionsBase = "https://map.kakao.com"

var (
	// ErrUnknownMode is returned for a mode outside the known set.
	ErrUnknownMode = errors.New("unknown view mode")

	// ErrNavigateOutsideBuilding is returned when a navigation request
	// is submitted from a mode other than Building.
	ErrNavigateOutsideBuilding = errors.New("navigation is only available from building view")
)

// Transition describes one state change, delivered to the listener.
type Transition struct {
	From Mode
	To   Mode

	// DirectionsURL is populated only when To == ModeDirections.
	DirectionsURL string
}

// Multiplexer is the view-mode state machine. Transitions are
// user-triggered tab selections, except that submitting a navigation
// request while in Building mode transitions to Directions.
type Multiplexer struct {
	mode          Mode
	directionsURL string
	onChange      func(Transition)
}

// New creates a Multiplexer starting in Building mode. onChange is
// invoked for every effective transition; it may be nil.
func New(onChange func(Transition)) *Multiplexer {
	return &Multiplexer{mode: ModeBuilding, onChange: onChange}
}

// Mode returns the active mode.
func (m *Multiplexer) Mode() Mode {
	return m.mode
}

// DirectionsURL returns the external navigation target set by the last
// Navigate call, or the bare service URL if none was set.
func (m *Multiplexer) DirectionsURL() string {
	if m.directionsURL == "" {
		return directionsBase
	}
	return m.directionsURL
}

// Select switches to the given mode. Selecting the active mode is a
// no-op; re-entering a previously visited mode reuses existing overlay
// handles, so the listener only attaches and detaches.
func (m *Multiplexer) Select(mode Mode) error {
	switch mode {
	case ModeBuilding, ModeDirections, ModeEvents:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	if mode == m.mode {
		return nil
	}
	m.transition(mode, "")
	return nil
}

// Navigate submits a navigation request for the named destination and
// transitions to Directions. Only valid from Building mode.
func (m *Multiplexer) Navigate(title string, pos model.Position) error {
	if m.mode != ModeBuilding {
		return ErrNavigateOutsideBuilding
	}
	if !pos.Valid() {
		return fmt.Errorf("navigation target has invalid coordinates (%v, %v)", pos.Lat, pos.Lon)
	}
	m.transition(ModeDirections, DirectionsURL(title, pos))
	return nil
}

func (m *Multiplexer) transition(to Mode, directionsURL string) {
	from := m.mode
	m.mode = to
	m.directionsURL = directionsURL
	if m.onChange != nil {
		m.onChange(Transition{From: from, To: to, DirectionsURL: directionsURL})
	}
}

// DirectionsURL builds the external navigation deep link for a target.
func DirectionsURL(title string, pos model.Position) string {
	if title == "" {
		title = "destination"
	}
	return fmt.Sprintf("%s/link/to/%s,%v,%v", directionsBase, url.PathEscape(title), pos.Lat, pos.Lon)
}
