package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"carbot_backend/internal/session"
	"carbot_backend/platform/config"
	"carbot_backend/platform/logger"
)

const classifyTimeout = 20 * time.Second

// GeminiClassifier classifies user messages with a Gemini model constrained
// to a JSON decision schema.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewGeminiClassifier dials the Gemini API with the configured key.
func NewGeminiClassifier(ctx context.Context, cfg config.AIConfig, log *logger.Logger) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClassifier{client: client, model: cfg.GetGeminiModel(), log: log}, nil
}

// Classify implements Classifier. Any model or decode failure is wrapped in
// ErrClassificationUnavailable so callers can fall back gracefully.
func (g *GeminiClassifier) Classify(ctx context.Context, text string, conv *session.ConversationContext) (Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(conversationPrompt(text, conv)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(classifierSystemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    decisionSchema(),
			Temperature:       genai.Ptr[float32](0.1),
		},
	)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return Decision{}, fmt.Errorf("%w: empty model response", ErrClassificationUnavailable)
	}

	var decision Decision
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		g.log.Warn("undecodable classifier response", "response", truncate(raw, 200))
		return Decision{}, fmt.Errorf("%w: decode decision: %v", ErrClassificationUnavailable, err)
	}
	if decision.Action == "" {
		return Decision{}, fmt.Errorf("%w: decision without action", ErrClassificationUnavailable)
	}
	return decision, nil
}

// GeminiHumanizer rewrites result messages in a warmer register. It is
// best-effort: on any failure the caller keeps the original message.
type GeminiHumanizer struct {
	client *genai.Client
	model  string
}

// NewGeminiHumanizer reuses the classifier's client so both share one
// connection and key.
func NewGeminiHumanizer(classifier *GeminiClassifier) *GeminiHumanizer {
	return &GeminiHumanizer{client: classifier.client, model: classifier.model}
}

// Humanize implements Humanizer.
func (g *GeminiHumanizer) Humanize(ctx context.Context, userText string, result ActionResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(humanizePrompt(userText, result)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(humanizerSystemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		return "", fmt.Errorf("humanize: %w", err)
	}

	rewritten := strings.TrimSpace(resp.Text())
	if rewritten == "" {
		return "", fmt.Errorf("humanize: empty model response")
	}
	return rewritten, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
