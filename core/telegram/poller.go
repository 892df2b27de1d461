package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/lecturebot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// allowedUpdates lists the update kinds the bot consumes.
var allowedUpdates = []string{"message", "callback_query", "inline_query"}

// BuildPoller returns a webhook or long poller depending on telegram.run_mode.
func BuildPoller(cfg *coreconfig.Config) tele.Poller {
	if strings.EqualFold(cfg.Telegram.RunMode, coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:         fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint:       &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
			AllowedUpdates: allowedUpdates,
		}
	}
	return &tele.LongPoller{
		Timeout:        longPollTimeout(cfg),
		AllowedUpdates: allowedUpdates,
	}
}

func longPollTimeout(cfg *coreconfig.Config) time.Duration {
	if cfg.Telegram.LongPollTimeoutSeconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
}
