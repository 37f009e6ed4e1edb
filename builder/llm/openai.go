package llm

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/lfedgeai/taskcat/pkg/net"
	"github.com/lfedgeai/taskcat/pkg/openai"
)

// OpenAIClient talks to any OpenAI compatible chat completions endpoint.
type OpenAIClient struct {
	ep   EndpointInfo
	http *http.Client
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatMessage{Role: "system", Content: req.System})
	}
	msgs = append(msgs, openai.ChatMessage{Role: "user", Content: req.User})
	return c.Chat(ctx, &openai.ChatCompletionRequest{
		Model:     c.ep.Model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	})
}

// Chat sends a fully formed request. The model field is filled in from the
// endpoint when empty.
func (c *OpenAIClient) Chat(ctx context.Context, chatReq *openai.ChatCompletionRequest) (string, error) {
	if chatReq.Model == "" {
		chatReq.Model = c.ep.Model
	}
	jsonBytes, err := chatReq.Marshal()
	if err != nil {
		return "", fmt.Errorf("error marshalling ChatCompletionRequest: %w", err)
	}

	log.Debugf("Chat request to %s, %d bytes", c.ep.URL(), len(jsonBytes))
	res, err := net.SendRequest(ctx, c.http, c.ep.URL(), bytes.NewBuffer(jsonBytes),
		net.ContentTypeJSON, c.ep.APIKey)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	respData := openai.ChatCompletionResponse{}
	if err := respData.Unmarshal(res); err != nil {
		return "", &DecodeError{Err: fmt.Errorf("error unmarshalling response: %v. Content: %s",
			err, string(res))}
	}
	txt, err := respData.Text()
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	return txt, nil
}

// NewOpenAIClient is used by components that need multimodal requests.
func NewOpenAIClient(ep EndpointInfo, hc *http.Client) *OpenAIClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &OpenAIClient{ep: ep, http: hc}
}
