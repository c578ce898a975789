package main

import (
	"strings"

	"vibe-cli/internal/agent"
	anthropicmodel "vibe-cli/internal/agent/anthropic"
	openaimodel "vibe-cli/internal/agent/openai"
	"vibe-cli/internal/config"
)

// buildModelClient 按 provider 选择模型客户端；没有可用凭证时退回 echo。
func buildModelClient(cfg config.Config) agent.ModelClient {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		log.Warn("no token configured; falling back to echo mode")
		return agent.EchoClient{Prefix: "assistant: "}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "anthropic":
		client, err := anthropicmodel.New(anthropicmodel.Options{
			Token:   token,
			BaseURL: cfg.URL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Fatalf("failed to init anthropic client: %v", err)
		}
		return client
	case "openai", "":
		client, err := openaimodel.New(openaimodel.Options{
			APIKey:  token,
			BaseURL: cfg.URL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Fatalf("failed to init openai client: %v", err)
		}
		return client
	default:
		log.Warnf("unknown provider %q; falling back to echo mode", cfg.Provider)
		return agent.EchoClient{Prefix: "assistant: "}
	}
}
