// Package assistant implements the routine and follow-up conversations.
//
// Failures never surface as errors: a transport problem or a response
// without reply text appends a fixed apology to the transcript instead.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/hpungsan/regimen/internal/catalog"
	"github.com/hpungsan/regimen/internal/chat"
	"github.com/hpungsan/regimen/internal/completion"
	"github.com/hpungsan/regimen/internal/logging"
)

const (
	// NoSelectionMessage is shown instead of calling the service when nothing is selected.
	NoSelectionMessage = "Please select at least one product to generate a routine."

	RoutineFallback  = "Sorry, I couldn't generate a routine. Please try again."
	FollowUpFallback = "Sorry, I couldn't answer that. Please try again."

	RoutineMaxTokens  = 300
	FollowUpMaxTokens = 200
)

const routineInstructions = "Please create a step-by-step skincare or beauty routine using only these products. " +
	"Explain the order and purpose of each step in a friendly, easy-to-understand way. " +
	"Keep it short and concise, ideally under 300 words."

// RoutineResult describes what GenerateRoutine did.
type RoutineResult struct {
	// Requested is false when the selection was empty and no call was made.
	Requested bool
	// Notice is the inline message shown when Requested is false.
	Notice string
	// Reply is the appended assistant message (real reply or fallback).
	Reply chat.Message
	// Fallback is true when Reply holds the apology text.
	Fallback bool
}

// Assistant sends transcripts to a completion service.
// Requests are serialized: a second action waits until the first reply is appended.
type Assistant struct {
	completer completion.Completer
	logger    *zap.Logger
	inflight  *semaphore.Weighted
}

// New creates an Assistant.
func New(completer completion.Completer, logger *zap.Logger) *Assistant {
	return &Assistant{
		completer: completer,
		logger:    logging.OrNop(logger),
		inflight:  semaphore.NewWeighted(1),
	}
}

// RoutinePrompt enumerates products by name, brand and description and asks
// for a routine restricted to them.
func RoutinePrompt(products []catalog.Product) string {
	var b strings.Builder
	b.WriteString("Here are the products I have selected:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s (%s) - %s\n", i+1, p.Name, p.Brand, p.Description)
	}
	b.WriteString("\n")
	b.WriteString(routineInstructions)
	return b.String()
}

// GenerateRoutine asks for a routine built from products. An empty product
// list makes no call and returns the NoSelectionMessage notice.
func (a *Assistant) GenerateRoutine(ctx context.Context, transcript *chat.Transcript, products []catalog.Product) RoutineResult {
	if len(products) == 0 {
		return RoutineResult{Notice: NoSelectionMessage}
	}

	reply, fallback := a.exchange(ctx, transcript, RoutinePrompt(products), RoutineMaxTokens, RoutineFallback)
	return RoutineResult{Requested: true, Reply: reply, Fallback: fallback}
}

// FollowUp sends text with the whole transcript. Blank text is ignored and
// reports false.
func (a *Assistant) FollowUp(ctx context.Context, transcript *chat.Transcript, text string) (chat.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, false
	}
	reply, _ := a.exchange(ctx, transcript, text, FollowUpMaxTokens, FollowUpFallback)
	return reply, true
}

// exchange appends the user message, submits the transcript and appends the reply.
func (a *Assistant) exchange(ctx context.Context, transcript *chat.Transcript, userText string, maxTokens int, fallback string) (chat.Message, bool) {
	if err := a.inflight.Acquire(ctx, 1); err != nil {
		a.logger.Warn("assistant: gave up waiting for in-flight request", zap.Error(err))
		transcript.Append(chat.RoleUser, userText)
		return transcript.Append(chat.RoleAssistant, fallback), true
	}
	defer a.inflight.Release(1)

	transcript.Append(chat.RoleUser, userText)

	reply, err := a.completer.Complete(ctx, wireMessages(transcript.Messages()), maxTokens)
	if err != nil {
		a.logger.Warn("assistant: completion failed, using fallback",
			zap.Error(err),
			zap.Int("max_tokens", maxTokens),
			zap.Int("messages", transcript.Len()),
		)
		return transcript.Append(chat.RoleAssistant, fallback), true
	}

	return transcript.Append(chat.RoleAssistant, reply), false
}

func wireMessages(messages []chat.Message) []completion.Message {
	out := make([]completion.Message, len(messages))
	for i, m := range messages {
		out[i] = completion.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}
