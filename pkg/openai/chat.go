package openai

import (
	"encoding/json"
	"fmt"
)

type ChatCompletionRequest struct {
	Messages  []ChatMessage `json:"messages"`
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

// marshal operations
func (r *ChatCompletionRequest) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// unmarshal to ChatCompletionRequest
func (r *ChatCompletionRequest) Unmarshal(data []byte) error {
	return json.Unmarshal(data, r)
}

// ChatMessage content is either a plain string or a list of ContentPart
// values for multimodal requests.
type ChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

func ImagePart(dataURI string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}}
}

type ChatCompletionResponse struct {
	Id      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Error   *APIError    `json:"error,omitempty"`
}

type ChatChoice struct {
	Message ChatMessage `json:"message"`
	Index   json.Number `json:"index"`
	Reason  string      `json:"finish_reason"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (r *ChatCompletionResponse) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func (r *ChatCompletionResponse) Unmarshal(data []byte) error {
	return json.Unmarshal(data, r)
}

// Text returns the text content of the first choice.
func (r *ChatCompletionResponse) Text() (string, error) {
	if r.Error != nil {
		return "", fmt.Errorf("error from API: %s", r.Error.Message)
	}
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	switch c := r.Choices[0].Message.Content.(type) {
	case string:
		return c, nil
	case nil:
		return "", fmt.Errorf("response has empty content")
	default:
		return "", fmt.Errorf("unexpected content type %T", c)
	}
}
