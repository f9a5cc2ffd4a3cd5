package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/minbar/pkg/core"
)

// DefaultOpenAIBaseURL is the public chat completions endpoint root.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIConfig configures an OpenAI-compatible chat completions planner.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	JSONMode   bool // request response_format json_object
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// OpenAI plans through any server speaking the chat completions protocol.
type OpenAI struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	jsonMode  bool
	http      *http.Client
	logger    *slog.Logger
}

// NewOpenAI creates an OpenAI-compatible planner.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	p := &OpenAI{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:    cfg.APIKey,
		model:     strings.TrimSpace(cfg.Model),
		maxTokens: cfg.MaxTokens,
		jsonMode:  cfg.JSONMode,
		http:      cfg.HTTPClient,
		logger:    cfg.Logger,
	}
	if p.baseURL == "" {
		p.baseURL = DefaultOpenAIBaseURL
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	if p.maxTokens <= 0 {
		p.maxTokens = DefaultMaxTokens
	}
	if p.http == nil {
		p.http = &http.Client{Timeout: 60 * time.Second}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat any           `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Plan implements core.Planner.
func (p *OpenAI) Plan(ctx context.Context, instruction string, callerContext core.Metadata) (string, error) {
	user, err := UserMessage(instruction, callerContext)
	if err != nil {
		return "", err
	}
	req := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: user},
		},
		MaxTokens: p.maxTokens,
	}
	if p.jsonMode {
		req.ResponseFormat = map[string]string{"type": "json_object"}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", core.ErrPlanner, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrPlanner, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	start := time.Now()
	resp, err := p.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", core.ErrPlanner, err)
		}
		return "", fmt.Errorf("%w: request failed: %v", core.ErrPlanner, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", core.ErrPlanner, err)
	}
	p.logger.Debug("planner responded", "model", p.model, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp.StatusCode, body)
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", core.ErrPlanner, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", core.ErrPlanner)
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", core.ErrPlanner)
	}
	return content, nil
}

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var decoded chatResponse
	if json.Unmarshal(body, &decoded) == nil && decoded.Error != nil && decoded.Error.Message != "" {
		msg = decoded.Error.Message
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: planner status %d: %s", core.ErrAuth, status, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: planner status %d: %s", core.ErrRateLimited, status, msg)
	}
	return fmt.Errorf("%w: status %d: %s", core.ErrPlanner, status, msg)
}

// ComponentType implements introspection.Component.
func (p *OpenAI) ComponentType() string { return "openai-planner" }

var _ core.Planner = (*OpenAI)(nil)
