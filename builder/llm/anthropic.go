package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/pkg/net"
)

const (
	AnthropicVersion = "2023-06-01"
	DefaultMaxTokens = 1000
)

type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AnthropicMessagesRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []AnthropicMessage `json:"messages"`
}

type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicMessagesResponse struct {
	Id         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []AnthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	ep   EndpointInfo
	http *http.Client
}

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	msgReq := AnthropicMessagesRequest{
		Model:     c.ep.Model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages: []AnthropicMessage{
			{Role: "user", Content: req.User},
		},
	}
	jsonBytes, err := json.Marshal(&msgReq)
	if err != nil {
		return "", fmt.Errorf("error marshalling AnthropicMessagesRequest: %w", err)
	}

	log.Debugf("Anthropic request to %s, %d bytes", c.ep.URL(), len(jsonBytes))
	res, err := net.SendRequest(ctx, c.http, c.ep.URL(), bytes.NewBuffer(jsonBytes),
		net.ContentTypeJSON, "",
		net.Header{Key: "x-api-key", Value: c.ep.APIKey},
		net.Header{Key: "anthropic-version", Value: AnthropicVersion})
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	respData := AnthropicMessagesResponse{}
	if err := json.Unmarshal(res, &respData); err != nil {
		return "", &DecodeError{Err: fmt.Errorf("error unmarshalling response: %v. Content: %s",
			err, string(res))}
	}
	if respData.Error != nil {
		return "", &DecodeError{Err: fmt.Errorf("error from Anthropic: %s", respData.Error.Message)}
	}

	var sb strings.Builder
	for _, blk := range respData.Content {
		if blk.Type == "text" {
			sb.WriteString(blk.Text)
		}
	}
	if sb.Len() == 0 {
		return "", &DecodeError{Err: fmt.Errorf("anthropic response %s has no text content", respData.Id)}
	}
	log.Debugf("Anthropic response %s, stop reason %s", respData.Id, respData.StopReason)
	return sb.String(), nil
}
