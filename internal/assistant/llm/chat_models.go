// Package llm constructs the Gemini chat models the assistant runs on.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/sunrise-assist/server/internal/assistant/model"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	APIKey          string
	BaseURL         string
	AssistantConfig *model.AssistantModelConfig
	KnowledgeConfig *model.KnowledgeModelConfig
}

// ChatModels holds the tool-bound assistant model and the plain knowledge
// model used inside the triage and hospital-info tools.
type ChatModels struct {
	Assistant          *gemini.ChatModel
	Knowledge          *gemini.ChatModel
	AssistantModelName string
	KnowledgeModelName string
}

// NewChatModels creates both chat models on a shared Gemini client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	assistant, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.AssistantConfig.Model,
		Temperature: &config.AssistantConfig.Temperature,
		MaxTokens:   &config.AssistantConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating assistant model")
		return nil, fmt.Errorf("error creating assistant model: %w", err)
	}

	knowledge, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.KnowledgeConfig.Model,
		Temperature: &config.KnowledgeConfig.Temperature,
		MaxTokens:   &config.KnowledgeConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating knowledge model")
		return nil, fmt.Errorf("error creating knowledge model: %w", err)
	}

	return &ChatModels{
		Assistant:          assistant,
		Knowledge:          knowledge,
		AssistantModelName: config.AssistantConfig.Model,
		KnowledgeModelName: config.KnowledgeConfig.Model,
	}, nil
}

// BindToolsToAssistant binds the tool schemas to the assistant model.
func (cm *ChatModels) BindToolsToAssistant(ctx context.Context, tools []*schema.ToolInfo) error {
	if err := cm.Assistant.BindTools(tools); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}
	logx.Debug().Int("tools", len(tools)).Msg("Successfully bound tools to assistant model")
	return nil
}
