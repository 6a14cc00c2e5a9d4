package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

// GeminiModel calls Gemini and rotates through the configured API keys when
// one is rate limited.
type GeminiModel struct {
	mu         sync.Mutex
	clients    []*genai.Client
	currentKey int
	model      string
	logger     logger.Logger
}

// NewGeminiModel creates one client per API key.
func NewGeminiModel(ctx context.Context, apiKeys []string, model string, log logger.Logger) (*GeminiModel, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}

	clients := make([]*genai.Client, 0, len(apiKeys))
	for i, key := range apiKeys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create client for key %d: %w", i+1, err)
		}
		clients = append(clients, client)
	}

	return &GeminiModel{
		clients: clients,
		model:   model,
		logger:  log,
	}, nil
}

// Generate sends the prompt pair to Gemini and returns the concatenated text
// parts of the first candidate.
func (g *GeminiModel) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
		MaxOutputTokens:   int32(req.MaxTokens),
	}

	attempts := len(g.clients)
	var lastErr error

	for range attempts {
		idx, client := g.current()

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(req.User), cfg)
		if err != nil {
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			return text.String(), nil
		}

		return "", nil
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *GeminiModel) current() (int, *genai.Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.clients[g.currentKey]
}

// rotateKey advances past idx unless another call already rotated.
func (g *GeminiModel) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.clients)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
