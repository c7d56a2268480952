// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package overlay

import (
	"log/slog"
	"sync/atomic"

	"github.com/nexus/campusmap/internal/model"
)

// HeadlessSurface is a Surface that records viewport commands instead
// of driving a real map. Used for smoke runs against a live backend and
// in tests.
type HeadlessSurface struct {
	logger *slog.Logger
	center atomic.Pointer[model.Position]
	level  atomic.Int64
}

// NewHeadlessSurface creates a HeadlessSurface.
func NewHeadlessSurface(logger *slog.Logger) *HeadlessSurface {
	if logger == nil {
		logger = slog.Default()
	}
	return &HeadlessSurface{logger: logger}
}

// PanTo implements Surface.
func (s *HeadlessSurface) PanTo(pos model.Position) {
	s.center.Store(&pos)
	s.logger.Debug("surface pan", "lat", pos.Lat, "lon", pos.Lon)
}

// SetLevel implements Surface.
func (s *HeadlessSurface) SetLevel(level int) {
	s.level.Store(int64(level))
}

// Center returns the last PanTo target, if any.
func (s *HeadlessSurface) Center() (model.Position, bool) {
	p := s.center.Load()
	if p == nil {
		return model.Position{}, false
	}
	return *p, true
}

// HeadlessWidget creates handles that track attachment state only.
type HeadlessWidget struct {
	logger  *slog.Logger
	created atomic.Int64
}

// NewHeadlessWidget creates a HeadlessWidget.
func NewHeadlessWidget(logger *slog.Logger) *HeadlessWidget {
	if logger == nil {
		logger = slog.Default()
	}
	return &HeadlessWidget{logger: logger}
}

// CreateOverlay implements Widget.
func (w *HeadlessWidget) CreateOverlay(pos model.Position, html string, onClick func()) Handle {
	w.created.Add(1)
	return &headlessHandle{pos: pos, html: html, onClick: onClick}
}

// Created returns the number of overlays constructed so far.
func (w *HeadlessWidget) Created() int64 {
	return w.created.Load()
}

type headlessHandle struct {
	pos      model.Position
	html     string
	onClick  func()
	attached Surface
}

func (h *headlessHandle) SetMap(s Surface) {
	h.attached = s
}

// Attached reports whether the handle is on a surface.
func (h *headlessHandle) Attached() bool {
	return h.attached != nil
}

// Click fires the overlay's click closure, simulating a marker tap.
func (h *headlessHandle) Click() {
	if h.onClick != nil {
		h.onClick()
	}
}
