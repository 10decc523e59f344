// Package assistant implements the conversational turn loop: one user
// message in, one assistant reply out, with tool execution in between.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/sunrise-assist/server/internal/assistant/model"
	"github.com/sunrise-assist/server/internal/assistant/prompts"
	"github.com/sunrise-assist/server/internal/assistant/tools"
	logx "github.com/sunrise-assist/server/pkg/logger"
)

const (
	// FallbackTechnicalIssue is returned when the model provider fails.
	// Provider failures are not retried.
	FallbackTechnicalIssue = "I encountered a technical issue. Please try again later."

	// FallbackExhausted is returned when the model keeps producing empty
	// responses until the attempt budget runs out.
	FallbackExhausted = "I'm having trouble generating a response. Please try again later."

	// retryNudge is appended as a user message before re-invoking the model
	// after an empty response.
	retryNudge = "Please provide a complete response."

	// maxToolRounds bounds consecutive tool-call rounds within one turn.
	maxToolRounds = 8
)

// Assistant drives one conversation turn at a time. Turns on the same thread
// are serialized; turns on different threads run concurrently.
type Assistant struct {
	chatModel einomodel.BaseChatModel
	registry  *tools.Registry
	threads   model.ThreadRepository

	promptCfg    model.PromptConfig
	location     *time.Location
	maxAttempts  int
	modelTimeout time.Duration

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	callSeq int
}

// Config assembles an Assistant.
type Config struct {
	ChatModel    einomodel.BaseChatModel
	Registry     *tools.Registry
	Threads      model.ThreadRepository
	PromptConfig model.PromptConfig
	Location     *time.Location
	Conversation model.ConversationConfig
}

// New validates the configuration and returns an Assistant.
func New(cfg Config) (*Assistant, error) {
	if cfg.ChatModel == nil || cfg.Registry == nil || cfg.Threads == nil {
		return nil, fmt.Errorf("assistant: chat model, registry and thread repository are required")
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	maxAttempts := cfg.Conversation.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	timeout := time.Duration(cfg.Conversation.ModelTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Assistant{
		chatModel:    cfg.ChatModel,
		registry:     cfg.Registry,
		threads:      cfg.Threads,
		promptCfg:    cfg.PromptConfig,
		location:     cfg.Location,
		maxAttempts:  maxAttempts,
		modelTimeout: timeout,
		locks:        make(map[string]*sync.Mutex),
	}, nil
}

// threadLock returns the mutex serializing turns on one thread.
func (a *Assistant) threadLock(threadID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[threadID]
	if !ok {
		l = &sync.Mutex{}
		a.locks[threadID] = l
	}
	return l
}

// nextCallID synthesizes a tool call id when the provider omits one.
func (a *Assistant) nextCallID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callSeq++
	return fmt.Sprintf("call_%d", a.callSeq)
}

// Respond runs one conversation turn: it records the user message, invokes
// the model (executing any tools it requests), records the reply, and
// returns it. Every path returns usable text; failures degrade to fixed
// fallback replies rather than errors, so the only error returned is a
// thread-store failure.
func (a *Assistant) Respond(ctx context.Context, threadID, userText string) (string, error) {
	lock := a.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	ctx = tools.WithThreadID(ctx, threadID)

	if err := a.threads.AddMessage(ctx, threadID, schema.UserMessage(userText)); err != nil {
		return "", fmt.Errorf("record user message: %w", err)
	}

	system, err := prompts.RenderSystem(ctx, a.promptCfg, a.location, time.Now())
	if err != nil {
		logx.Error().Err(err).Msg("system prompt render failed")
		return a.finishWithFallback(ctx, threadID, FallbackTechnicalIssue)
	}

	attempts := 0
	toolRounds := 0
	for {
		history, err := a.threads.LoadHistory(ctx, threadID)
		if err != nil {
			return "", fmt.Errorf("load history: %w", err)
		}
		input := append([]*schema.Message{schema.SystemMessage(system)}, history.Messages...)

		out, err := a.generate(ctx, input)
		if err != nil {
			logx.Error().Err(err).Str("thread_id", threadID).Msg("model invocation failed")
			return a.finishWithFallback(ctx, threadID, FallbackTechnicalIssue)
		}

		if len(out.ToolCalls) > 0 {
			toolRounds++
			if toolRounds > maxToolRounds {
				logx.Warn().Str("thread_id", threadID).Msg("tool round limit exceeded")
				return a.finishWithFallback(ctx, threadID, FallbackExhausted)
			}
			if err := a.runToolCalls(ctx, threadID, out, toolRounds); err != nil {
				return "", err
			}
			continue
		}

		if strings.TrimSpace(out.Content) == "" {
			attempts++
			logx.Warn().
				Str("thread_id", threadID).
				Int("attempt", attempts).
				Msg("model returned empty content")
			if attempts >= a.maxAttempts {
				return a.finishWithFallback(ctx, threadID, FallbackExhausted)
			}
			if err := a.threads.AddMessage(ctx, threadID, schema.UserMessage(retryNudge)); err != nil {
				return "", fmt.Errorf("record retry nudge: %w", err)
			}
			continue
		}

		if err := a.threads.AddMessage(ctx, threadID, out); err != nil {
			return "", fmt.Errorf("record assistant reply: %w", err)
		}
		return out.Content, nil
	}
}

// generate invokes the model under the per-call deadline.
func (a *Assistant) generate(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.modelTimeout)
	defer cancel()
	out, err := a.chatModel.Generate(callCtx, input)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("model returned nil message")
	}
	return out, nil
}

// runToolCalls records the assistant's tool-call message, executes each
// requested tool, and records the tool results. Tool failures are already
// strings inside the results, so nothing here surfaces them as errors.
func (a *Assistant) runToolCalls(ctx context.Context, threadID string, out *schema.Message, toolRounds int) error {
	// Some providers omit tool call ids; synthesize them so results pair up.
	for i := range out.ToolCalls {
		if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
			out.ToolCalls[i].ID = a.nextCallID()
		}
	}

	if err := a.threads.AddMessage(ctx, threadID, out); err != nil {
		return fmt.Errorf("record tool call message: %w", err)
	}

	for _, call := range out.ToolCalls {
		name := call.Function.Name
		var result string
		if !a.registry.Has(name) {
			logx.Warn().Str("thread_id", threadID).Str("tool", name).Msg("model requested unknown tool")
			result = fmt.Sprintf("Error: tool %q is not available.", name)
		} else {
			res, err := a.registry.Run(ctx, name, call.Function.Arguments)
			if err != nil {
				logx.Error().Err(err).Str("thread_id", threadID).Str("tool", name).Msg("tool execution failed")
				result = fmt.Sprintf("Error executing tool %s: %v.", name, err)
			} else {
				result = res
			}
		}
		if err := a.threads.AddMessage(ctx, threadID, schema.ToolMessage(result, call.ID, schema.WithToolName(name))); err != nil {
			return fmt.Errorf("record tool result: %w", err)
		}
	}

	if toolRounds >= maxToolRounds {
		notice := fmt.Sprintf(
			"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
				"Please synthesize a helpful response using the information you've already gathered.",
			maxToolRounds)
		if err := a.threads.AddMessage(ctx, threadID, schema.SystemMessage(notice)); err != nil {
			return fmt.Errorf("record tool limit notice: %w", err)
		}
	}
	return nil
}

// finishWithFallback records the fallback reply in the thread and returns it.
func (a *Assistant) finishWithFallback(ctx context.Context, threadID, text string) (string, error) {
	if err := a.threads.AddMessage(ctx, threadID, schema.AssistantMessage(text, nil)); err != nil {
		return "", fmt.Errorf("record fallback reply: %w", err)
	}
	return text, nil
}
