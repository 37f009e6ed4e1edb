package llm

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

type Provider int

const (
	ProviderAnthropic Provider = iota
	ProviderOpenAI
)

func (p Provider) String() string {
	switch p {
	case ProviderAnthropic:
		return "anthropic"
	case ProviderOpenAI:
		return "openai"
	default:
		return "unknown"
	}
}

type EndpointInfo struct {
	Name        string   `json:"name"`
	Provider    Provider `json:"provider"`
	Model       string   `json:"model"`
	Base        string   `json:"base"`
	APIKey      string   `json:"apikey"`        // used if APIKeyInEnv is empty
	APIKeyInEnv string   `json:"apikey_in_env"` // if not empty, the API key is in env var
	Url         string   `json:"url"`
}

// URL joins base and path without doubling the slash.
func (e EndpointInfo) URL() string {
	l := e.Base
	r := e.Url
	if l != "" && r != "" && l[len(l)-1] == '/' && r[0] == '/' {
		return l[:len(l)-1] + r
	}
	return l + r
}

var (
	AnthropicBase = "https://api.anthropic.com/v1"
	OpenAIBase    = "https://api.openai.com/v1"
	DeepSeekBase  = "https://api.deepseek.com"
)

var (
	PlannerEndpoints = []EndpointInfo{
		{
			Name:        "anthropic-sonnet",
			Provider:    ProviderAnthropic,
			Model:       "claude-3-5-sonnet-20241022",
			Base:        AnthropicBase,
			APIKeyInEnv: "ANTHROPIC_API_KEY",
			Url:         "/messages",
		},
		{
			Name:        "openai-chat",
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o",
			Base:        OpenAIBase,
			APIKeyInEnv: "OPENAI_API_KEY",
			Url:         "/chat/completions",
		},
		{
			Name:        "deepseek-chat",
			Provider:    ProviderOpenAI,
			Model:       "deepseek-chat",
			Base:        DeepSeekBase,
			APIKeyInEnv: "DEEPSEEK_API_KEY",
			Url:         "/chat/completions",
		},
	}
)

// LookupEndpoint returns the first endpoint matching modelOrName whose API
// key is available. Keys configured through env vars are resolved here.
func LookupEndpoint(eps []EndpointInfo, modelOrName string) (EndpointInfo, error) {
	for _, e := range eps {
		if e.Model != modelOrName && e.Name != modelOrName {
			continue
		}
		if e.APIKeyInEnv != "" {
			key := os.Getenv(e.APIKeyInEnv)
			if key == "" {
				log.Debugf("Skipping endpoint %s: %s not set", e.Name, e.APIKeyInEnv)
				continue
			}
			e.APIKey = key
		}
		log.Infof("Using LLM endpoint %s (%s, model %s)", e.Name, e.Provider, e.Model)
		return e, nil
	}
	return EndpointInfo{}, fmt.Errorf("no usable endpoint for model %s", modelOrName)
}
