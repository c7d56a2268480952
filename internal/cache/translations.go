// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"time"
)

// Translation is a cached translation of one event's text into one
// target language.
type Translation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TranslationCache caches translation results keyed by event id and
// target language, so reopening a detail view does not re-issue the
// translation request.
type TranslationCache struct {
	typed *TypedCache[Translation]
}

// NewTranslationCache creates a TranslationCache over the given backend.
func NewTranslationCache(backend Cacher, ttl time.Duration) *TranslationCache {
	return &TranslationCache{typed: NewTypedCache[Translation](backend, ttl)}
}

func translationKey(eventID int64, lang string) string {
	return fmt.Sprintf("translate:%d:%s", eventID, lang)
}

// Get returns the cached translation for an event and language.
func (c *TranslationCache) Get(ctx context.Context, eventID int64, lang string) (*Translation, bool) {
	return c.typed.Get(ctx, translationKey(eventID, lang))
}

// Put stores a translation result.
func (c *TranslationCache) Put(ctx context.Context, eventID int64, lang string, t Translation) error {
	return c.typed.Set(ctx, translationKey(eventID, lang), &t)
}

// Invalidate drops a single (event, language) entry, used after an
// event's text is edited.
func (c *TranslationCache) Invalidate(ctx context.Context, eventID int64, lang string) error {
	return c.typed.Delete(ctx, translationKey(eventID, lang))
}
