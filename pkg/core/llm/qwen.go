package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// QwenProvider backs the analyze_specific node by default
// (config/models.yaml): industry-specific indicator commentary tends to
// need less English-language training data than core/auxiliary analysis,
// where DashScope's Qwen models are a reasonable fit.
type QwenProvider struct{}

func (p *QwenProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	// 1. Get API Key from options or env
	apiKey := os.Getenv("DASHSCOPE_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	// Fallback to QWEN_API_KEY if DASHSCOPE_API_KEY is not set
	if apiKey == "" {
		apiKey = os.Getenv("QWEN_API_KEY")
	}

	if apiKey == "" {
		return "", fmt.Errorf("QWEN_API_KEY_MISSING: Please set DASHSCOPE_API_KEY or QWEN_API_KEY")
	}

	// 2. Get Model
	model := "qwen-max"
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	// 3. Construct Request Body (Native DashScope API format)
	// See: https://help.aliyun.com/document_detail/2712532.html
	reqBody := map[string]interface{}{
		"model": model,
		"input": map[string]interface{}{
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt},
				{"role": "user", "content": prompt},
			},
		},
		"parameters": map[string]interface{}{
			"result_format": "message",
			// Fixed low temperature: the model is asked to stay inside the
			// supplied indicator figures, not to write creatively.
			"temperature": 0.1,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal qwen request: %w", err)
	}

	// 4. Create HTTP Request
	req, err := http.NewRequestWithContext(ctx, "POST", "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	// 5. Execute Request
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("qwen api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("qwen api returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	// 6. Parse Response
	// Response structure:
	// {
	//   "output": {
	//     "choices": [
	//       {
	//         "message": {
	//           "content": "..."
	//         }
	//       }
	//     ]
	//   }
	// }
	var result struct {
		Output struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
			// Compatibility for some DashScope endpoints that return 'text' directly in output
			Text string `json:"text"`
		} `json:"output"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode qwen response: %w", err)
	}

	if result.Code != "" {
		return "", fmt.Errorf("qwen api error: %s - %s", result.Code, result.Message)
	}

	// Try extracting content from choices first (chat format)
	if len(result.Output.Choices) > 0 {
		return result.Output.Choices[0].Message.Content, nil
	}

	// Fallback for text completion format
	if result.Output.Text != "" {
		return result.Output.Text, nil
	}

	return "", fmt.Errorf("empty response from qwen api")
}

// AdaptInstructions appends the plain-Markdown reminder shared with
// GeminiProvider: quality_check parses the generated report as Markdown
// headings, so every provider routed through generate_report/analyze_*
// needs to be steered away from fenced or JSON-wrapped output.
func (p *QwenProvider) AdaptInstructions(raw string) string {
	if raw == "" {
		return raw
	}
	return raw + reportMarkdownReminder
}
