// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package assistant answers free-form campus questions by grounding a
// chat model in the current building directory. Providers speak plain
// HTTP; there is no SDK dependency.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nexus/campusmap/internal/model"
)

const httpTimeout = 120 * time.Second

// Provider IDs accepted in configuration.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// ChatMessage is a single turn in a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider performs a chat completion against a model backend.
type Provider interface {
	ID() string
	ChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error)
}

// BuildingSource supplies the building directory the assistant grounds
// its answers in.
type BuildingSource interface {
	Buildings() []model.Building
}

// Assistant turns user questions into grounded chat completions.
type Assistant struct {
	provider  Provider
	model     string
	buildings BuildingSource
}

// Options configures a new Assistant.
type Options struct {
	Provider string // "ollama" or "openai"
	BaseURL  string // Provider endpoint; defaults depend on provider
	Model    string
	APIKey   string // Required for openai, ignored for ollama
}

// New creates an Assistant, or an error for an unknown provider ID.
func New(opts Options, buildings BuildingSource) (*Assistant, error) {
	var p Provider
	switch opts.Provider {
	case ProviderOllama:
		p = newOllamaClient(opts.BaseURL)
	case ProviderOpenAI:
		p = newOpenAIClient(opts.BaseURL, opts.APIKey)
	default:
		return nil, fmt.Errorf("assistant: unknown provider %q", opts.Provider)
	}
	return &Assistant{provider: p, model: opts.Model, buildings: buildings}, nil
}

// ProviderID returns the active provider's identifier.
func (a *Assistant) ProviderID() string { return a.provider.ID() }

// Ask answers a campus question. The building directory is serialized
// into the system prompt so the model answers from directory facts
// rather than from its training data.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("assistant: empty question")
	}

	system, err := buildSystemPrompt(a.buildings.Buildings())
	if err != nil {
		return "", fmt.Errorf("assistant prompt: %w", err)
	}

	messages := []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: question},
	}
	answer, err := a.provider.ChatCompletion(ctx, a.model, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// buildSystemPrompt embeds the building directory as JSON in the
// instruction block.
func buildSystemPrompt(buildings []model.Building) (string, error) {
	type entry struct {
		Name        string   `json:"name"`
		ShortName   string   `json:"shortName,omitempty"`
		Description string   `json:"description,omitempty"`
		Departments string   `json:"departments,omitempty"`
		Facilities  string   `json:"facilities,omitempty"`
		OpenHours   string   `json:"openHours,omitempty"`
		Phone       string   `json:"phone,omitempty"`
		Floors      []string `json:"floors,omitempty"`
	}
	entries := make([]entry, 0, len(buildings))
	for _, b := range buildings {
		e := entry{
			Name:        b.Name,
			ShortName:   b.ShortName,
			Description: b.Description,
			Departments: b.Departments,
			Facilities:  b.Facilities,
			OpenHours:   b.OpenHours,
			Phone:       b.Phone,
		}
		for _, f := range b.Floors {
			e.Floors = append(e.Floors, fmt.Sprintf("%s: %s", f.Name, f.Description))
		}
		entries = append(entries, e)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("You are a campus guide. Answer questions about campus buildings, ")
	sb.WriteString("departments, facilities and opening hours using only the directory below. ")
	sb.WriteString("If the directory does not contain the answer, say you do not know. ")
	sb.WriteString("Answer in the language of the question, briefly.\n\n")
	sb.WriteString("Building directory (JSON):\n")
	sb.Write(data)
	return sb.String(), nil
}

// ollamaClient implements Provider for a local Ollama server.
type ollamaClient struct {
	baseURL string
}

func newOllamaClient(baseURL string) *ollamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &ollamaClient{baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *ollamaClient) ID() string { return ProviderOllama }

func (c *ollamaClient) ChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	body := map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
	}

	respBody, err := postJSON(ctx, c.baseURL+"/api/chat", "", body)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("ollama decode: %w", err)
	}
	return result.Message.Content, nil
}

// openAIClient implements Provider for OpenAI-compatible endpoints.
type openAIClient struct {
	baseURL string
	apiKey  string
}

func newOpenAIClient(baseURL, apiKey string) *openAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

func (c *openAIClient) ID() string { return ProviderOpenAI }

func (c *openAIClient) ChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	body := map[string]any{
		"model":    model,
		"messages": messages,
	}

	respBody, err := postJSON(ctx, c.baseURL+"/chat/completions", c.apiKey, body)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("openai decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

// postJSON performs a JSON POST with optional Bearer auth.
func postJSON(ctx context.Context, url, apiKey string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
