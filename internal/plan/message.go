package plan

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

// MessageGenerator produces the plan's short motivational message.
// Implementations are best-effort: the selector falls back to
// deterministic templates on any error and never retries.
type MessageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// HTTPGenerator calls the external AI text-generation service.
type HTTPGenerator struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGenerator creates the AI client.
func NewHTTPGenerator(baseURL, apiKey string, timeout time.Duration) *HTTPGenerator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Generate sends the prompt and returns the generated text.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", fmt.Errorf("ai: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: http POST: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("ai: unmarshal: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("ai: empty response")
	}

	return strings.TrimSpace(out.Text), nil
}

// fallbackTemplates substitute the user's name and the job count.
var fallbackTemplates = []string{
	"%s, you have %d solid opportunities today. Start with the top one and keep the momentum going!",
	"Good morning %s! %d jobs made your list today. One application at a time gets it done.",
	"%s, today's plan has %d openings worth your attention. The best one is right at the top.",
	"Fresh picks for you, %s: %d jobs that fit what you're looking for. Go get them!",
	"%s, %d new matches are waiting. A focused hour today beats a scattered week.",
}

// fallbackMessage picks one of the templates deterministically by job
// count, so regenerating the same plan yields the same message.
func fallbackMessage(name string, jobCount int) string {
	if name == "" {
		name = "there"
	}
	tmpl := fallbackTemplates[jobCount%len(fallbackTemplates)]
	return fmt.Sprintf(tmpl, name, jobCount)
}
