package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nexus/campusmap/internal/model"
)

type staticBuildings []model.Building

func (s staticBuildings) Buildings() []model.Building { return s }

var directory = staticBuildings{
	{
		ID:          1,
		Name:        "Central Library",
		ShortName:   "LIB",
		Departments: "Library Services",
		OpenHours:   "09:00-22:00",
		Floors: []model.Floor{
			{Name: "1F", Description: "Lobby and loans desk"},
		},
	},
}

func TestAskOllama(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "  The library opens at 09:00.  "},
		})
	}))
	defer srv.Close()

	a, err := New(Options{Provider: ProviderOllama, BaseURL: srv.URL, Model: "llama3.1:8b"}, directory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	answer, err := a.Ask(context.Background(), "When does the library open?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "The library opens at 09:00." {
		t.Errorf("answer = %q", answer)
	}

	if gotPath != "/api/chat" {
		t.Errorf("path = %q, want /api/chat", gotPath)
	}
	if gotBody["model"] != "llama3.1:8b" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["stream"] != false {
		t.Errorf("stream = %v, want false", gotBody["stream"])
	}

	// The system prompt grounds the model in the building directory.
	messages, _ := gotBody["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v", messages)
	}
	system, _ := messages[0].(map[string]any)
	content, _ := system["content"].(string)
	if !strings.Contains(content, "Central Library") || !strings.Contains(content, "09:00-22:00") {
		t.Errorf("system prompt missing directory facts: %q", content)
	}
	if !strings.Contains(content, "Lobby and loans desk") {
		t.Errorf("system prompt missing floor details: %q", content)
	}
}

func TestAskOpenAI(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "ask at the desk"}},
			},
		})
	}))
	defer srv.Close()

	a, err := New(Options{Provider: ProviderOpenAI, BaseURL: srv.URL, Model: "gpt-4o-mini", APIKey: "sk-test"}, directory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	answer, err := a.Ask(context.Background(), "where do I return books?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "ask at the desk" {
		t.Errorf("answer = %q", answer)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	a, err := New(Options{Provider: ProviderOllama, Model: "m"}, directory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Ask(context.Background(), "   "); err == nil {
		t.Fatal("empty question should be rejected without a network call")
	}
}

func TestUnknownProvider(t *testing.T) {
	if _, err := New(Options{Provider: "bard"}, directory); err == nil {
		t.Fatal("unknown provider should fail")
	}
}

func TestBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	a, err := New(Options{Provider: ProviderOllama, BaseURL: srv.URL, Model: "missing"}, directory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Ask(context.Background(), "hello?"); err == nil {
		t.Fatal("backend error should surface")
	}
}
