// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"time"

	"github.com/nexus/campusmap/internal/cache"
	"github.com/nexus/campusmap/internal/gateway"
	"github.com/nexus/campusmap/internal/model"
)

// enrichTimeout bounds each background enrichment request.
const enrichTimeout = 15 * time.Second

// OpenDetail opens the detail view for an event and launches its
// enrichment: translation of the text into the active language and the
// comment thread, fetched concurrently. Each opening gets a fresh
// sequence number; results are applied only if both the event id and
// the sequence still match, so rapid open/close/open cycles cannot land
// a stale response in the wrong view.
func (c *Controller) OpenDetail(eventID int64) error {
	ev, ok := c.store.Event(eventID)
	if !ok {
		return ErrEventNotFound
	}

	body, err := c.content.DetailBody(ev.Description)
	if err != nil {
		c.logger.Warn("detail render failed", "event_id", eventID, "error", err)
		body = ""
	}

	c.mu.Lock()
	c.detailSeq++
	seq := c.detailSeq
	lang := c.language
	c.detail = &Detail{
		EventID:     eventID,
		Title:       ev.Title,
		Description: ev.Description,
		BodyHTML:    body,
		Comments:    c.store.Comments(eventID),
		Likes:       ev.Likes,
		seq:         seq,
	}
	if c.surface != nil {
		if pos, ok := ev.Position(); ok {
			c.surface.PanTo(pos)
		}
	}
	c.mu.Unlock()

	go c.enrichTranslation(eventID, seq, ev.Title, ev.Description, lang)
	go c.enrichComments(eventID, seq)
	return nil
}

// CloseDetail closes the detail view. In-flight enrichment for the
// closed view is abandoned by the sequence guard.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeDetailLocked()
}

func (c *Controller) closeDetailLocked() {
	c.detail = nil
	c.detailSeq++
}

// Detail returns a copy of the open detail view state.
func (c *Controller) Detail() (Detail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil {
		return Detail{}, false
	}
	d := *c.detail
	d.Comments = append([]model.Comment(nil), c.detail.Comments...)
	return d, true
}

// enrichTranslation resolves the translated text for a detail view,
// consulting the cache before the backend. Failure is not an error
// surface: the view simply keeps the original-language text.
func (c *Controller) enrichTranslation(eventID int64, seq uint64, title, description, lang string) {
	ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
	defer cancel()

	if c.translations != nil {
		if t, ok := c.translations.Get(ctx, eventID, lang); ok {
			c.applyTranslation(eventID, seq, *t)
			return
		}
	}

	result, err := c.api.Translate(ctx, gateway.TranslateRequest{
		Title:       title,
		Description: description,
		TargetLang:  lang,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on translate")
			return
		}
		c.logger.Debug("translation unavailable", "event_id", eventID, "error", err)
		return
	}

	t := cache.Translation{
		Title:       result.TranslatedTitle,
		Description: result.TranslatedDescription,
	}
	if c.translations != nil {
		if err := c.translations.Put(ctx, eventID, lang, t); err != nil {
			c.logger.Debug("translation cache write failed", "event_id", eventID, "error", err)
		}
	}
	c.applyTranslation(eventID, seq, t)
}

// applyTranslation installs a translation result if the detail view
// that requested it is still the one on screen.
func (c *Controller) applyTranslation(eventID int64, seq uint64, t cache.Translation) {
	if t.Title == "" && t.Description == "" {
		return
	}

	body := ""
	if t.Description != "" {
		rendered, err := c.content.DetailBody(t.Description)
		if err != nil {
			c.logger.Warn("translated render failed", "event_id", eventID, "error", err)
		} else {
			body = rendered
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil || c.detail.EventID != eventID || c.detail.seq != seq {
		c.logger.Debug("stale translation discarded", "event_id", eventID)
		return
	}
	if t.Title != "" {
		c.detail.Title = t.Title
	}
	if t.Description != "" {
		c.detail.Description = t.Description
	}
	if body != "" {
		c.detail.BodyHTML = body
	}
	c.detail.Translated = true
}

// enrichComments fetches the comment thread for a detail view.
func (c *Controller) enrichComments(eventID int64, seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
	defer cancel()

	comments, err := c.api.ListComments(ctx, eventID)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.forceLogout("token rejected on comment fetch")
			return
		}
		c.logger.Debug("comment fetch failed", "event_id", eventID, "error", err)
		return
	}
	c.policy.MarkOwnership(comments, c.store.User())

	c.mu.Lock()
	if c.detail == nil || c.detail.EventID != eventID || c.detail.seq != seq {
		c.mu.Unlock()
		c.logger.Debug("stale comment list discarded", "event_id", eventID)
		return
	}
	c.mu.Unlock()

	c.store.SetComments(eventID, comments)
	c.refreshDetailComments(eventID)
}

// refreshDetailComments mirrors the store's comment list into the open
// detail view, if it is showing this event.
func (c *Controller) refreshDetailComments(eventID int64) {
	comments := c.store.Comments(eventID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil || c.detail.EventID != eventID {
		return
	}
	c.detail.Comments = comments
}
