package commands

import (
	"context"

	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
	"github.com/m3rciful/lecturebot/internal/ai"
	"github.com/m3rciful/lecturebot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) Question(c tele.Context) error {
	return h.complete(c, texts.QuestionUsage, func(s string) string { return s }, texts.Answer)
}

func (h *Handlers) Translate(c tele.Context) error {
	return h.complete(c, texts.TranslateUsage, ai.TranslatePrompt, texts.Translation)
}

func (h *Handlers) Summarize(c tele.Context) error {
	return h.complete(c, texts.SummarizeUsage, ai.SummarizePrompt, texts.Summary)
}

// complete runs one prompt built from the arguments and replies with the
// formatted answer.
func (h *Handlers) complete(c tele.Context, usage string, prompt, format func(string) string) error {
	text := tghelpers.Args(c)
	if text == "" {
		return c.Reply(texts.Sign(usage))
	}
	if h.deps.AI == nil || !h.deps.AI.Enabled() {
		return c.Reply(texts.Sign(texts.AIDisabled))
	}
	_ = c.Notify(tele.Typing)
	ctx, cancel := context.WithTimeout(tghelpers.BuildContext(c), h.deps.AITimeout)
	defer cancel()
	answer, err := h.deps.AI.Complete(ctx, prompt(text))
	if err != nil {
		return err
	}
	return c.Reply(texts.Sign(format(answer)))
}
