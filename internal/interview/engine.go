package interview

import (
	"context"
	"time"

	"github.com/unglihq/ungli/internal/completion"
	"github.com/unglihq/ungli/internal/observability"
	"github.com/unglihq/ungli/internal/policy"
	"github.com/unglihq/ungli/internal/transcript"
)

// Engine turns a conversation transcript plus the latest user message into
// the next interview question. At most two completion calls are made per
// user message: the initial attempt and one reinforced retry. If both
// candidates fail the output filters the interview is closed with a fixed
// message instead of a third call.
type Engine struct {
	client  completion.Client
	filters policy.Filters
	metrics *observability.Metrics
}

func NewEngine(client completion.Client, filters policy.Filters, metrics *observability.Metrics) *Engine {
	return &Engine{client: client, filters: filters, metrics: metrics}
}

// NextQuestion produces the assistant's reply to userMessage given the prior
// turns. Gateway failures are returned unchanged so the caller can decide how
// to surface them; filter failures never surface as errors.
func (e *Engine) NextQuestion(ctx context.Context, history []transcript.Turn, userMessage string) (string, error) {
	chat := chatHistory(history)
	prior := priorQuestions(history)

	messages := make([]completion.Message, 0, len(chat)+2)
	messages = append(messages, completion.Message{
		Role:    completion.RoleSystem,
		Content: SystemPrompt + "\n\n" + NextQuestionPrompt,
	})
	messages = append(messages, chat...)
	messages = append(messages, completion.Message{Role: completion.RoleUser, Content: userMessage})

	candidate, err := e.complete(ctx, messages)
	if err != nil {
		return "", err
	}
	violation := e.filters.Check(candidate, prior)
	if violation == policy.ViolationNone {
		return candidate, nil
	}
	e.metrics.CountPolicyViolation(string(violation))

	retry := make([]completion.Message, 0, len(chat)+3)
	retry = append(retry, completion.Message{
		Role:    completion.RoleSystem,
		Content: SystemPrompt + "\n\n" + RetryPromptSuffix + "\n\n" + NextQuestionPrompt,
	})
	retry = append(retry, chat...)
	retry = append(retry, completion.Message{Role: completion.RoleUser, Content: userMessage})
	retry = append(retry, completion.Message{Role: completion.RoleUser, Content: RetryInstruction})

	candidate, err = e.complete(ctx, retry)
	if err != nil {
		return "", err
	}
	if violation := e.filters.Check(candidate, prior); violation != policy.ViolationNone {
		e.metrics.CountPolicyViolation(string(violation))
		e.metrics.CountConversationEvent("closed_by_filter")
		return ClosingMessage, nil
	}
	return candidate, nil
}

func (e *Engine) complete(ctx context.Context, messages []completion.Message) (string, error) {
	start := time.Now()
	text, err := e.client.Complete(ctx, messages)
	e.metrics.ObserveCompletionLatency(time.Since(start))
	if err != nil {
		e.metrics.CountCompletion("error")
		return "", err
	}
	e.metrics.CountCompletion("ok")
	return text, nil
}

// chatHistory maps stored turns onto completion roles. Both legacy
// "assistant" and current "bot" speakers map to the assistant role.
func chatHistory(turns []transcript.Turn) []completion.Message {
	out := make([]completion.Message, 0, len(turns))
	for _, t := range turns {
		switch {
		case t.Speaker == transcript.SpeakerUser:
			out = append(out, completion.Message{Role: completion.RoleUser, Content: t.Text})
		case t.Speaker.IsAssistant():
			out = append(out, completion.Message{Role: completion.RoleAssistant, Content: t.Text})
		}
	}
	return out
}

func priorQuestions(turns []transcript.Turn) []string {
	var out []string
	for _, t := range turns {
		if t.Speaker.IsAssistant() {
			out = append(out, t.Text)
		}
	}
	return out
}
