package overlay

import (
	"strings"
	"testing"

	"github.com/nexus/campusmap/internal/model"
)

func TestEventMarkerWithImage(t *testing.T) {
	b := NewContentBuilder()
	ev := &model.Event{ID: 5, Title: "Festival", ImageURL: "https://cdn.example.com/5.jpg"}

	html := b.EventMarker(ev)
	if !strings.Contains(html, `data-event-id="5"`) {
		t.Errorf("marker missing event id: %q", html)
	}
	if !strings.Contains(html, `class="campus-marker"`) {
		t.Errorf("marker missing class hook: %q", html)
	}
	if !strings.Contains(html, `class="campus-marker-img"`) {
		t.Errorf("image missing class hook: %q", html)
	}
	if !strings.Contains(html, "cdn.example.com/5.jpg") {
		t.Errorf("marker missing image: %q", html)
	}
}

func TestEventMarkerRejectsUnsafeImageURL(t *testing.T) {
	b := NewContentBuilder()

	for _, src := range []string{"javascript:alert(1)", "data:text/html,x"} {
		html := b.EventMarker(&model.Event{ID: 6, Title: "Fair", ImageURL: src})
		if strings.Contains(html, "javascript:") || strings.Contains(html, "data:") {
			t.Errorf("unsafe image url survived: %q", html)
		}
		// Falls back to the initial badge.
		if !strings.Contains(html, "campus-marker-badge") {
			t.Errorf("no badge fallback for unsafe url: %q", html)
		}
	}
}

func TestEventMarkerEscapesImageAlt(t *testing.T) {
	b := NewContentBuilder()
	ev := &model.Event{ID: 8, Title: `a"b<c`, ImageURL: "https://cdn.example.com/8.jpg"}

	html := b.EventMarker(ev)
	if !strings.Contains(html, `alt="a&#34;b&lt;c"`) {
		t.Errorf("alt text not escaped: %q", html)
	}
}

func TestEventMarkerInitialBadge(t *testing.T) {
	b := NewContentBuilder()

	html := b.EventMarker(&model.Event{ID: 1, Title: "동아리 공연"})
	if !strings.Contains(html, "동") {
		t.Errorf("marker missing title initial: %q", html)
	}

	html = b.EventMarker(&model.Event{ID: 2, Title: ""})
	if !strings.Contains(html, "?") {
		t.Errorf("empty-title marker missing placeholder: %q", html)
	}
}

func TestEventMarkerEscapesUserText(t *testing.T) {
	b := NewContentBuilder()
	ev := &model.Event{ID: 9, Title: `<script>alert(1)</script>`}

	html := b.EventMarker(ev)
	if strings.Contains(html, "<script>") {
		t.Errorf("script tag survived sanitization: %q", html)
	}
}

func TestBuildingMarker(t *testing.T) {
	b := NewContentBuilder()

	html := b.BuildingMarker(&model.Building{ID: 3, Name: "Central Library", ShortName: "LIB"})
	if !strings.Contains(html, "LIB") {
		t.Errorf("marker should prefer short name: %q", html)
	}
	if !strings.Contains(html, `data-building-id="3"`) {
		t.Errorf("marker missing building id: %q", html)
	}

	html = b.BuildingMarker(&model.Building{ID: 4, Name: "Gym"})
	if !strings.Contains(html, "Gym") {
		t.Errorf("marker should fall back to full name: %q", html)
	}
}

func TestDetailBody(t *testing.T) {
	b := NewContentBuilder()

	html, err := b.DetailBody("**bold** and [link](https://example.com)")
	if err != nil {
		t.Fatalf("DetailBody: %v", err)
	}
	if !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("markdown not rendered: %q", html)
	}
	if !strings.Contains(html, `href="https://example.com"`) {
		t.Errorf("link not rendered: %q", html)
	}
}

func TestDetailBodySanitizes(t *testing.T) {
	b := NewContentBuilder()

	html, err := b.DetailBody(`text <script>alert(1)</script> <img src=x onerror=alert(1)>`)
	if err != nil {
		t.Fatalf("DetailBody: %v", err)
	}
	if strings.Contains(html, "<script>") || strings.Contains(html, "onerror") {
		t.Errorf("unsafe markup survived: %q", html)
	}
}
