// Package analyzer calls a language-model endpoint to classify a job posting
// (entry-level flag, required tech skills, qualifications summary) and parses
// the provider's often malformed response into typed fields.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobmate/workday-discovery/internal/model"
)

const (
	defaultMaxTokens = 512
	requestTimeout   = 60 * time.Second
)

// Configuration errors — rejected before any network call, never retried.
var (
	ErrMissingEndpoint = errors.New("analyzer endpoint is required")
	ErrMissingAPIKey   = errors.New("analyzer API key is required")
)

// Config holds the model endpoint configuration. Passed in explicitly so the
// analyzer is testable without environment setup.
type Config struct {
	Endpoint    string
	APIKey      string
	MaxTokens   int     // 0 = default (512)
	Temperature float64 // generation temperature, default 0
}

// Client sends analysis requests to the configured model endpoint.
type Client struct {
	cfg    Config
	client *http.Client
}

// New constructs a Client. The endpoint and key are validated on first use,
// not here, so a half-configured service can still start.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, client: &http.Client{Timeout: requestTimeout}}
}

// NewWithClient constructs a Client around an existing HTTP client.
func NewWithClient(cfg Config, hc *http.Client) *Client {
	return &Client{cfg: cfg, client: hc}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// Analyze classifies one job posting. It returns an error only for
// configuration problems or transport failures; malformed model output always
// comes back as an AnalysisResult with the Error field set and the raw text
// preserved for audit.
func (c *Client) Analyze(ctx context.Context, title, description string) (model.AnalysisResult, error) {
	var result model.AnalysisResult

	if c.cfg.Endpoint == "" {
		return result, ErrMissingEndpoint
	}
	if c.cfg.APIKey == "" {
		return result, ErrMissingAPIKey
	}

	maxTokens := c.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	payload, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(title, description)},
		},
		MaxTokens:   maxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return result, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("read body: %w", err)
	}

	return ParseResponse(body, resp.StatusCode), nil
}

// ParseResponse runs the tolerant extraction cascade over a raw provider
// response. It never fails: when nothing parseable is found the result
// carries the best-effort raw text plus a diagnostic in Error.
func ParseResponse(body []byte, status int) model.AnalysisResult {
	var envelope any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return model.AnalysisResult{
			Raw:   string(body),
			Error: fmt.Sprintf("Non-JSON response (HTTP %d)", status),
		}
	}

	rawText, structured := extractFromEnvelope(envelope)
	if rawText == "" {
		rawText = stringify(envelope)
	}

	if structured == nil {
		structured = extractEmbeddedObject(rawText)
	}

	if structured == nil {
		return model.AnalysisResult{
			Raw:   rawText,
			Error: "Model output not parseable as JSON after multiple extraction attempts",
		}
	}

	return normalizeFields(structured, rawText)
}

// extractFromEnvelope inspects known provider shapes, in priority order, and
// returns the model's text output plus any structured object already parsed
// along the way.
func extractFromEnvelope(envelope any) (rawText string, structured map[string]any) {
	obj, ok := envelope.(map[string]any)
	if !ok {
		return "", nil
	}

	// Cloudflare REST shape: {result: {response: "<model text>"}}.
	if result, ok := obj["result"].(map[string]any); ok {
		if response, ok := result["response"].(string); ok {
			rawText = response
			var maybe map[string]any
			if err := json.Unmarshal([]byte(response), &maybe); err == nil {
				structured = maybe
			}
			return rawText, structured
		}
	}

	// Some providers return result as a string directly.
	if result, ok := obj["result"].(string); ok {
		return result, nil
	}

	for _, extract := range textExtractors {
		if text, ok := extract(obj); ok {
			return text, nil
		}
	}
	return "", nil
}

// textExtractors is the ordered strategy list of known provider response
// shapes. Each is a total function from envelope to optional text.
var textExtractors = []func(map[string]any) (string, bool){
	func(o map[string]any) (string, bool) { // choices[0].message.content
		c, ok := firstElem(o["choices"])
		if !ok {
			return "", false
		}
		if msg, ok := c["message"].(map[string]any); ok {
			if s, ok := msg["content"].(string); ok {
				return s, true
			}
		}
		return "", false
	},
	func(o map[string]any) (string, bool) { // choices[0].text
		c, ok := firstElem(o["choices"])
		if !ok {
			return "", false
		}
		s, ok := c["text"].(string)
		return s, ok
	},
	func(o map[string]any) (string, bool) { // choices[0].delta.content
		c, ok := firstElem(o["choices"])
		if !ok {
			return "", false
		}
		if delta, ok := c["delta"].(map[string]any); ok {
			if s, ok := delta["content"].(string); ok {
				return s, true
			}
		}
		return "", false
	},
	func(o map[string]any) (string, bool) { // output
		s, ok := o["output"].(string)
		return s, ok
	},
	func(o map[string]any) (string, bool) { // result (string, re-checked for order)
		s, ok := o["result"].(string)
		return s, ok
	},
	func(o map[string]any) (string, bool) { // generations[0].text or generations[0][0].text
		gens, ok := o["generations"].([]any)
		if !ok || len(gens) == 0 {
			return "", false
		}
		if g, ok := gens[0].(map[string]any); ok {
			if s, ok := g["text"].(string); ok {
				return s, true
			}
		}
		if inner, ok := gens[0].([]any); ok && len(inner) > 0 {
			if g, ok := inner[0].(map[string]any); ok {
				if s, ok := g["text"].(string); ok {
					return s, true
				}
			}
		}
		return "", false
	},
	func(o map[string]any) (string, bool) { // text
		s, ok := o["text"].(string)
		return s, ok
	},
}

func firstElem(v any) (map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	m, ok := list[0].(map[string]any)
	return m, ok
}

// extractEmbeddedObject digs a JSON object out of free text: first a direct
// parse from the first "{", then a scan for the first balanced brace span.
func extractEmbeddedObject(text string) map[string]any {
	start := strings.Index(text, "{")
	if start < 0 {
		return nil
	}
	candidate := text[start:]

	var direct map[string]any
	if err := json.Unmarshal([]byte(candidate), &direct); err == nil {
		return direct
	}

	span, ok := balancedBraceSpan(candidate)
	if !ok {
		return nil
	}
	var scanned map[string]any
	if err := json.Unmarshal([]byte(span), &scanned); err != nil {
		return nil
	}
	return scanned
}

// balancedBraceSpan returns the prefix of s up to the brace that closes the
// first "{", matching nesting depth back to zero.
func balancedBraceSpan(s string) (string, bool) {
	depth := 0
	for i, ch := range s {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// normalizeFields maps the extracted object onto typed result fields.
// isFresher accepts bool or the literal strings "true"/"false"; anything else
// is unknown. Skills and qualifications must be strings and are trimmed.
func normalizeFields(obj map[string]any, rawText string) model.AnalysisResult {
	result := model.AnalysisResult{Raw: rawText}

	switch v := obj["isFresher"].(type) {
	case bool:
		result.IsFresher = &v
	case string:
		if v == "true" || v == "false" {
			b := v == "true"
			result.IsFresher = &b
		}
	}

	if s, ok := obj["techSkills"].(string); ok {
		result.TechSkills = strings.TrimSpace(s)
	}
	if s, ok := obj["qualifications"].(string); ok {
		result.Qualifications = strings.TrimSpace(s)
	}
	return result
}

func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
