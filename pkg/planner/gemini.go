package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/aretw0/minbar/pkg/core"
)

// DefaultGeminiModel is used when GeminiConfig.Model is empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini planner.
type GeminiConfig struct {
	APIKey     string
	Model      string
	MaxTokens  int
	BaseURL    string // overrides the API endpoint, mainly for tests
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Gemini plans through Google's Gemini API.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
	logger    *slog.Logger
}

// NewGemini creates a Gemini planner.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", core.ErrAuth)
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	g := &Gemini{
		client:    client,
		model:     strings.TrimSpace(cfg.Model),
		maxTokens: int32(cfg.MaxTokens),
		logger:    cfg.Logger,
	}
	if g.model == "" {
		g.model = DefaultGeminiModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = DefaultMaxTokens
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g, nil
}

// Plan implements core.Planner.
func (g *Gemini) Plan(ctx context.Context, instruction string, callerContext core.Metadata) (string, error) {
	user, err := UserMessage(instruction, callerContext)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		[]*genai.Content{genai.NewContentFromText(user, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			MaxOutputTokens:   g.maxTokens,
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return "", classifyGemini(err)
	}
	g.logger.Debug("planner responded", "model", g.model, "duration", time.Since(start))

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", core.ErrPlanner)
	}
	return text, nil
}

func classifyGemini(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: gemini: %v", core.ErrAuth, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: gemini: %v", core.ErrRateLimited, err)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", core.ErrPlanner, err)
	}
	return fmt.Errorf("%w: gemini: %v", core.ErrPlanner, err)
}

// ComponentType implements introspection.Component.
func (g *Gemini) ComponentType() string { return "gemini-planner" }

var _ core.Planner = (*Gemini)(nil)
