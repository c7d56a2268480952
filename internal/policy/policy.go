// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package policy centralizes the visibility and permission rules for
// events and buildings. Every surface that gates an affordance on role
// or ownership consults the same Policy value; the role sets are never
// re-derived at call sites.
package policy

import (
	"github.com/nexus/campusmap/internal/model"
)

// Policy bundles the elevated-role sets used across the client.
type Policy struct {
	// Editors may edit or delete any event or comment regardless of
	// ownership.
	Editors []model.Role

	// Moderators may list pending events and approve them.
	Moderators []model.Role
}

// Default is the canonical policy: staff share edit rights with admins,
// moderation stays admin-only.
var Default = Policy{
	Editors:    []model.Role{model.RoleAdmin, model.RoleStaff},
	Moderators: []model.Role{model.RoleAdmin},
}

// IsEditor reports whether the role is in the elevated editor set.
func (p Policy) IsEditor(r model.Role) bool {
	return containsRole(p.Editors, r)
}

// IsModerator reports whether the role may access moderation surfaces.
func (p Policy) IsModerator(r model.Role) bool {
	return containsRole(p.Moderators, r)
}

// CanEditOrDelete reports whether the user may modify an entity created
// by creatorName. Ownership is matched by creator name, as the backend
// exposes no creator id on comments.
func (p Policy) CanEditOrDelete(creatorName string, u *model.User) bool {
	if u == nil {
		return false
	}
	if creatorName != "" && creatorName == u.Name {
		return true
	}
	return p.IsEditor(u.Role)
}

// CanModerate reports whether the user may view the pending list and
// approve events.
func (p Policy) CanModerate(u *model.User) bool {
	return u != nil && p.IsModerator(u.Role)
}

// EventVisible reports whether the event belongs on the shared map for
// the given viewer. Pending events are never placed on the map, for any
// role, including the creator: moderators review them through the
// pending list instead. Events without usable coordinates are excluded
// rather than risking a placement error.
func (p Policy) EventVisible(ev *model.Event, _ *model.User) bool {
	if ev == nil {
		return false
	}
	if _, ok := ev.Position(); !ok {
		return false
	}
	return ev.Approved()
}

// BuildingVisible reports whether the building belongs on the map.
// Buildings have no approval state; only coordinate sanity applies.
func (p Policy) BuildingVisible(b *model.Building) bool {
	if b == nil {
		return false
	}
	_, ok := b.Position()
	return ok
}

// MarkOwnership sets the client-derived IsMine flag on a comment list.
func (p Policy) MarkOwnership(comments []model.Comment, u *model.User) {
	for i := range comments {
		comments[i].IsMine = p.CanEditOrDelete(comments[i].UserName, u)
	}
}

func containsRole(roles []model.Role, r model.Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
