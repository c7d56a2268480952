// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package overlay reconciles entity state against live map overlays.
//
// The map widget is an opaque external component: it can create an
// overlay, attach or detach it from a surface, and nothing else. There
// is no declarative diffing API, so this package maintains the
// one-to-one mapping between visible entity ids and overlay handles
// itself, issuing the minimal create/detach calls on every pass.
package overlay

import (
	"log/slog"
	"sort"

	"github.com/nexus/campusmap/internal/model"
)

// Surface is the map viewport overlays attach to.
type Surface interface {
	PanTo(pos model.Position)
	SetLevel(level int)
}

// Handle is an opaque reference to one live overlay. Passing a nil
// Surface detaches the overlay without destroying it.
type Handle interface {
	SetMap(s Surface)
}

// Widget creates overlays. onClick carries the owning entity's id in a
// closure captured at construction time; there is no shared global
// click callback.
type Widget interface {
	CreateOverlay(pos model.Position, html string, onClick func()) Handle
}

// Item is one entity the reconciler should have an overlay for.
type Item struct {
	ID   int64
	Pos  model.Position
	HTML string
}

// Stats counts reconciler work, used by tests and the diagnostics panel.
type Stats struct {
	Creates  int64 `json:"creates"`
	Destroys int64 `json:"destroys"`
}

// Reconciler keeps a group of overlay handles in agreement with a
// desired set of items. One Reconciler owns one group (events or
// buildings); the handle map is mutated only through Reconcile,
// AttachAll and DetachAll.
type Reconciler struct {
	widget Widget
	logger *slog.Logger
	stats  Stats
}

// NewReconciler creates a Reconciler backed by the given widget.
func NewReconciler(widget Widget, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{widget: widget, logger: logger}
}

// Reconcile brings current into agreement with desired and returns the
// updated handle map.
//
// Handles for ids present in both sets are left untouched: content is
// not rebuilt merely because the backing entity was re-fetched with
// identical fields. Ids missing from desired are detached and dropped;
// ids missing from current are constructed, wired to onClick with their
// own id, and attached to surface. A nil surface constructs the new
// overlays detached, for groups that are not currently active.
//
// Calling Reconcile twice with the same desired set performs no
// additional creates or destroys.
func (r *Reconciler) Reconcile(desired map[int64]Item, current map[int64]Handle, surface Surface, onClick func(id int64)) map[int64]Handle {
	if current == nil {
		current = make(map[int64]Handle)
	}

	next := make(map[int64]Handle, len(desired))
	removed := 0
	for id, handle := range current {
		if _, keep := desired[id]; keep {
			next[id] = handle
			continue
		}
		handle.SetMap(nil)
		r.stats.Destroys++
		removed++
	}

	added := 0
	for id, item := range desired {
		if _, exists := next[id]; exists {
			continue
		}
		itemID := id
		handle := r.widget.CreateOverlay(item.Pos, item.HTML, func() {
			if onClick != nil {
				onClick(itemID)
			}
		})
		if surface != nil {
			handle.SetMap(surface)
		}
		next[id] = handle
		r.stats.Creates++
		added++
	}

	if added > 0 || removed > 0 {
		r.logger.Debug("overlays reconciled",
			"added", added,
			"removed", removed,
			"live", len(next))
	}
	return next
}

// AttachAll attaches every handle in the group to the surface, in id
// order for deterministic widget interaction.
func (r *Reconciler) AttachAll(handles map[int64]Handle, surface Surface) {
	for _, id := range sortedIDs(handles) {
		handles[id].SetMap(surface)
	}
}

// DetachAll detaches every handle from its surface without destroying
// it, so a later mode switch can reattach without reconstruction.
func (r *Reconciler) DetachAll(handles map[int64]Handle) {
	for _, id := range sortedIDs(handles) {
		handles[id].SetMap(nil)
	}
}

// Stats returns a copy of the reconciler's work counters.
func (r *Reconciler) Stats() Stats {
	return r.stats
}

func sortedIDs(handles map[int64]Handle) []int64 {
	ids := make([]int64, 0, len(handles))
	for id := range handles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
