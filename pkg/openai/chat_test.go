package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseText(t *testing.T) {
	resp := ChatCompletionResponse{}
	require.NoError(t, resp.Unmarshal([]byte(
		`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"a gear icon"},"finish_reason":"stop"}]}`)))
	txt, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "a gear icon", txt)
}

func TestResponseTextErrors(t *testing.T) {
	resp := ChatCompletionResponse{}
	require.NoError(t, resp.Unmarshal([]byte(`{"error":{"message":"bad key","type":"auth"}}`)))
	_, err := resp.Text()
	assert.ErrorContains(t, err, "bad key")

	resp = ChatCompletionResponse{}
	_, err = resp.Text()
	assert.Error(t, err)
}

func TestImageRequestShape(t *testing.T) {
	req := ChatCompletionRequest{
		Model: "florence2",
		Messages: []ChatMessage{{
			Role:    "user",
			Content: []ContentPart{TextPart("describe"), ImagePart("data:image/png;base64,AA==")},
		}},
	}
	data, err := req.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"florence2","messages":[{"role":"user","content":[
		{"type":"text","text":"describe"},
		{"type":"image_url","image_url":{"url":"data:image/png;base64,AA=="}}]}]}`, string(data))
}
