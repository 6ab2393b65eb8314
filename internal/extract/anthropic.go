package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	// DefaultModel is used when the config does not name one.
	DefaultModel = "claude-sonnet-4-20250514"

	// maxTokens is sized for a full batch response (summary plus up to
	// MaxGoals goals with subtasks).
	maxTokens = 4096

	maxRetries = 3
	initDelay  = 500 * time.Millisecond
)

// Client calls the Anthropic Messages API to turn an email batch into goal
// candidates. It is stateless; every call is independent.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	client     *http.Client
	retryDelay time.Duration
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates an extraction client. An empty model selects
// DefaultModel.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    anthropicBaseURL,
		model:      model,
		client:     &http.Client{Timeout: 120 * time.Second},
		retryDelay: initDelay,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ExtractGoals sends one batch prompt and returns the validated result.
// categories is the only allowed category set; userEmail personalizes the
// prompt (a placeholder is fine when the address could not be resolved).
func (c *Client) ExtractGoals(ctx context.Context, emailsText, userEmail string, categories []string) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is not configured")
	}

	prompt := BuildPrompt(emailsText, userEmail, categories)

	req := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	// Transient failures (network, 429, 5xx) are retried with exponential
	// backoff; everything else returns immediately.
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<attempt) * c.retryDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", anthropicVersion)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("AI request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read AI response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = statusError(resp.StatusCode, respBody)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}

		var apiResp anthropicResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return nil, fmt.Errorf("decode AI response: %w", err)
		}
		if len(apiResp.Content) == 0 {
			return nil, fmt.Errorf("AI returned an empty response")
		}

		result, err := ParseResponse(apiResp.Content[0].Text)
		if err != nil {
			return nil, err
		}
		ValidateResult(result, categories)
		return result, nil
	}

	return nil, lastErr
}

// statusError maps provider status codes to user-facing messages.
func statusError(code int, body []byte) error {
	detail := providerDetail(body)
	switch code {
	case http.StatusUnauthorized:
		return fmt.Errorf("invalid Anthropic API key (401)")
	case http.StatusForbidden:
		return fmt.Errorf("Anthropic API key lacks permission for this model (403)")
	case http.StatusTooManyRequests:
		return fmt.Errorf("Anthropic rate limit or quota exceeded (429), try again later")
	case 529:
		return fmt.Errorf("Anthropic API is overloaded (529), try again later")
	default:
		return fmt.Errorf("Anthropic API error (%d): %s", code, detail)
	}
}

func providerDetail(body []byte) string {
	var apiErr anthropicError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}

// ParseResponse extracts the analysis JSON from the model's text output,
// stripping an optional markdown code fence. A response without an
// analysis_summary object and a goals array is rejected as malformed.
func ParseResponse(text string) (*Result, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var raw struct {
		Summary *Summary `json:"analysis_summary"`
		Goals   *[]Goal  `json:"goals"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("AI response is not valid JSON: %w", err)
	}
	if raw.Summary == nil || raw.Goals == nil {
		return nil, fmt.Errorf("AI response is missing analysis_summary or goals")
	}

	return &Result{Summary: *raw.Summary, Goals: *raw.Goals}, nil
}
