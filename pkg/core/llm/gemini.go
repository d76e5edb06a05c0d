package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google's Gemini
// models. It backs the generate_report node by default (config/models.yaml),
// where longer context windows matter most.
type GeminiProvider struct {
	Model string // e.g. "gemini-2.0-flash-exp"
}

// Ensure interface compliance
var _ Provider = (*GeminiProvider)(nil)

// reportMarkdownReminder is appended to every system prompt routed through
// Gemini: report text is parsed back by quality_check's goldmark-based
// headingTexts, so a response wrapped in a code fence or switched into
// JSON would read as zero headings and fail the gate for no real reason.
const reportMarkdownReminder = "\n\n只输出纯 Markdown 正文，不要使用代码块包裹整份回答，也不要输出 JSON。"

// GenerateResponse sends a generateContent request to the Gemini API using the official GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	// Determine model
	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	// Allow override from options
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	// Low, fixed temperature: every node using this provider is producing
	// analysis grounded in supplied indicators/retrieved context, not
	// creative prose, so determinism is preferred over variety.
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)), // SDK expects *float32
	}

	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}

	result, err := client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	return result.Text(), nil
}

// AdaptInstructions appends the plain-Markdown reminder described above.
func (p *GeminiProvider) AdaptInstructions(raw string) string {
	if raw == "" {
		return raw
	}
	return raw + reportMarkdownReminder
}
