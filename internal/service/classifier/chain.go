package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
)

// Chain classifies through an eino prompt chain in front of any chat model.
// The server wires it to an Ark model.
type Chain struct {
	name     string
	runnable compose.Runnable[map[string]any, *schema.Message]
	timeout  time.Duration
}

// NewChain compiles the classification prompt in front of chatModel.
func NewChain(ctx context.Context, name string, chatModel model.ChatModel, timeout time.Duration) (*Chain, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(llmSystemPrompt),
		schema.UserMessage(llmUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile emotion classifier chain: %w", err)
	}

	return &Chain{name: name, runnable: runnable, timeout: timeout}, nil
}

func (c *Chain) Name() string { return c.name }

func (c *Chain) Classify(ctx context.Context, text string) classification.Outcome {
	if blank(text) {
		return classification.Failure(classification.ReasonEmptyInput, nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.runnable.Invoke(callCtx, map[string]any{"text": strings.TrimSpace(text)})
	if err != nil {
		return classification.Failure(reasonFor(callCtx, err), err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return classification.Failure(classification.ReasonMalformed, fmt.Errorf("empty model answer"))
	}

	label, confidence, err := parseLLMOutput(msg.Content)
	if err != nil {
		return classification.Failure(classification.ReasonMalformed, err)
	}
	return classification.Success(label, confidence)
}
