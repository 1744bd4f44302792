package analyst

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("no response from AI")

// ErrNotConfigured is returned by generators that have no credential.
var ErrNotConfigured = errors.New("AI analysis is not configured")

// Request is one structured text-generation call.
type Request struct {
	Model    string
	Prompt   string
	MIMEType string
	Schema   *genai.Schema
}

// Generator performs a text-generation call and returns the raw text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client      *genai.Client
	Temperature *float32
}

// NewGeminiGenerator creates a Gemini client. An empty baseURL keeps the SDK
// default endpoint.
func NewGeminiGenerator(ctx context.Context, apiKey, baseURL string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	cfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      g.Temperature,
		ResponseMIMEType: req.MIMEType,
		ResponseSchema:   req.Schema,
	}
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// unavailableGenerator stands in when no credential is configured, so every
// analysis resolves to the fallback.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}

// Unavailable returns a Generator that always fails with ErrNotConfigured.
func Unavailable() Generator { return unavailableGenerator{} }
