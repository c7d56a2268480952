// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package overlay

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/nexus/campusmap/internal/model"
)

// ContentBuilder renders overlay marker HTML and detail-view bodies.
// Event titles and descriptions are user-submitted, so everything that
// ends up inside widget HTML is escaped or sanitized.
type ContentBuilder struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewContentBuilder creates a ContentBuilder with GFM markdown and a
// UGC sanitization policy.
func NewContentBuilder() *ContentBuilder {
	return &ContentBuilder{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// EventMarker builds the marker HTML for an event: the uploaded image
// as a thumbnail when present, otherwise an initial badge from the
// title's first rune. The structural markup (class, data attributes)
// is trusted; only the user-derived fields are escaped or vetted, so
// the widget keeps its id/class hooks.
func (b *ContentBuilder) EventMarker(ev *model.Event) string {
	var inner string
	if src, ok := safeImageURL(ev.ImageURL); ok {
		inner = fmt.Sprintf(`<img src="%s" class="campus-marker-img" alt="%s"/>`,
			html.EscapeString(src), html.EscapeString(ev.Title))
	} else {
		inner = fmt.Sprintf(`<div class="campus-marker-badge">%s</div>`,
			html.EscapeString(titleInitial(ev.Title)))
	}
	return fmt.Sprintf(`<div class="campus-marker" data-event-id="%d">%s</div>`, ev.ID, inner)
}

// BuildingMarker builds the marker HTML for a building.
func (b *ContentBuilder) BuildingMarker(bld *model.Building) string {
	label := bld.ShortName
	if label == "" {
		label = bld.Name
	}
	return fmt.Sprintf(`<div class="building-marker" data-building-id="%d">%s</div>`,
		bld.ID, html.EscapeString(label))
}

// DetailBody renders an event description (markdown) into sanitized
// HTML for the detail view. Title and description may be the translated
// variants; the caller decides which text to show.
func (b *ContentBuilder) DetailBody(description string) (string, error) {
	var buf bytes.Buffer
	if err := b.md.Convert([]byte(description), &buf); err != nil {
		return "", fmt.Errorf("rendering description: %w", err)
	}
	return b.sanitizer.Sanitize(buf.String()), nil
}

// safeImageURL accepts http(s) and relative image URLs. Anything else
// (javascript:, data:, unparsable) is dropped and the caller falls back
// to the initial badge.
func safeImageURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "", "http", "https":
		return raw, true
	}
	return "", false
}

// titleInitial returns the first rune of a title, or a placeholder for
// empty titles.
func titleInitial(title string) string {
	title = strings.TrimSpace(title)
	for _, r := range title {
		return string(r)
	}
	return "?"
}
