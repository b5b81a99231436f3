// Package classifier implements the Classifier port against the Gemini
// generateContent REST API. Every capability is fail-safe: remote or
// parse failures produce a defaulted result, never an error.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hfujita/taskpilot/internal/domain"
)

const (
	defaultBaseURL       = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel         = "gemini-2.5-pro"
	defaultFallbackModel = "gemini-1.5-flash"
	defaultTimeout       = 30 * time.Second

	maxTags     = 3
	maxSubtasks = 5
)

// Ensure Client implements domain.Classifier.
var _ domain.Classifier = (*Client)(nil)

// Options configure the Gemini client.
type Options struct {
	APIKey        string        // Credential for the remote model
	Model         string        // Primary model name
	FallbackModel string        // Tried when the primary model fails
	BaseURL       string        // Overridable endpoint, used by tests
	Vocabulary    []string      // Closed tag vocabulary
	Timeout       time.Duration // Bound on each HTTP round trip
}

// Client labels task text via the Gemini API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	baseURL    string
	vocabulary []string
	models     []string
}

// New creates a new Gemini classifier client.
func New(opts Options, logger *slog.Logger) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	models := []string{model}
	fallback := opts.FallbackModel
	if fallback == "" && opts.Model == "" {
		fallback = defaultFallbackModel
	}
	if fallback != "" && fallback != model {
		models = append(models, fallback)
	}
	vocabulary := opts.Vocabulary
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		vocabulary: vocabulary,
		models:     models,
	}
}

// ClassifyPriority asks the model for a priority label. Unrecognized
// labels and remote failures default to low.
func (c *Client) ClassifyPriority(ctx context.Context, title, description string) domain.Result[domain.Priority] {
	prompt := fmt.Sprintf(
		"Analyze the following task and classify its priority as 'Low', 'Medium', 'High' or 'Critical'. "+
			"Task Title: %s, Description: %s. Return only the priority level.",
		title, description,
	)

	text, err := c.generate(ctx, prompt, 20)
	if err != nil {
		return c.defaulted(domain.PriorityLow, fmt.Sprintf("priority classification failed: %v", err))
	}

	priority, err := domain.ParsePriority(text)
	if err != nil {
		return c.defaulted(domain.PriorityLow, fmt.Sprintf("unrecognized priority label %q", strings.TrimSpace(text)))
	}
	return domain.Ok(priority)
}

// ClassifyTags asks the model for tags from the closed vocabulary.
// The response is filtered to vocabulary members, deduplicated and
// truncated to 3; failures default to none.
func (c *Client) ClassifyTags(ctx context.Context, title, description string) domain.Result[[]string] {
	prompt := fmt.Sprintf(
		"Choose up to %d tags for the following task from this fixed list: %s. "+
			"Task Title: %s, Description: %s. Return only a JSON array of the chosen tags.",
		maxTags, strings.Join(c.vocabulary, ", "), title, description,
	)

	text, err := c.generate(ctx, prompt, 60)
	if err != nil {
		return c.defaultedNames(fmt.Sprintf("tag classification failed: %v", err))
	}

	names, err := parseStringArray(text)
	if err != nil {
		return c.defaultedNames(fmt.Sprintf("malformed tag response: %v", err))
	}

	allowed := make(map[string]bool, len(c.vocabulary))
	for _, name := range c.vocabulary {
		allowed[domain.NormalizeTagName(name)] = true
	}

	var tags []string
	seen := make(map[string]bool)
	for _, name := range names {
		normalized := domain.NormalizeTagName(name)
		if !allowed[normalized] || seen[normalized] {
			continue
		}
		seen[normalized] = true
		tags = append(tags, normalized)
		if len(tags) == maxTags {
			break
		}
	}
	return domain.Ok(tags)
}

// Decompose asks the model for sub-task titles, truncated to 5.
// A response containing any empty title is treated as malformed.
func (c *Client) Decompose(ctx context.Context, title, description string) domain.Result[[]string] {
	prompt := fmt.Sprintf(
		"Break the following task into at most %d short, actionable sub-task titles. "+
			"Task Title: %s, Description: %s. Return only a JSON array of strings.",
		maxSubtasks, title, description,
	)

	text, err := c.generate(ctx, prompt, 200)
	if err != nil {
		return c.defaultedNames(fmt.Sprintf("decomposition failed: %v", err))
	}

	titles, err := parseStringArray(text)
	if err != nil {
		return c.defaultedNames(fmt.Sprintf("malformed decomposition response: %v", err))
	}
	for _, t := range titles {
		if strings.TrimSpace(t) == "" {
			return c.defaultedNames("decomposition response contains an empty title")
		}
	}
	if len(titles) > maxSubtasks {
		titles = titles[:maxSubtasks]
	}
	return domain.Ok(titles)
}

func (c *Client) defaulted(fallback domain.Priority, reason string) domain.Result[domain.Priority] {
	c.warn(reason)
	return domain.DefaultedResult(fallback, reason)
}

func (c *Client) defaultedNames(reason string) domain.Result[[]string] {
	c.warn(reason)
	return domain.DefaultedResult[[]string](nil, reason)
}

func (c *Client) warn(reason string) {
	if c.logger != nil {
		c.logger.Warn("classifier defaulted", "reason", reason)
	}
}

// Request/response shapes for the generateContent endpoint.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate sends the prompt to the primary model, falling back to the
// secondary model on failure.
func (c *Client) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var lastErr error
	for _, model := range c.models {
		text, err := c.generateWith(ctx, model, prompt, maxTokens)
		if err != nil {
			lastErr = err
			continue
		}
		return text, nil
	}
	return "", lastErr
}

func (c *Client) generateWith(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%s: status %d: %s", model, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", model, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s: empty response", model)
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// parseStringArray decodes a JSON array of strings, tolerating markdown
// code fences around the payload.
func parseStringArray(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var values []string
	if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
		return nil, err
	}
	return values, nil
}
