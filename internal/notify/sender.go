package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kozoukioden/HatimChainApp/internal/config"
)

// Sender delivers one reminder. A returned error leaves the reminder pending
// for the next sweep.
type Sender interface {
	Send(ctx context.Context, r Reminder) error
}

// LogSender writes reminders to the log. It is the default sender and the
// one used when no chat integration is configured.
type LogSender struct {
	Logger *zerolog.Logger
}

func (s LogSender) Send(_ context.Context, r Reminder) error {
	l := s.Logger
	if l == nil {
		l = &log.Logger
	}
	l.Info().
		Str("reminder_id", r.ID).
		Str("chain_id", r.ChainID).
		Str("lead", r.Lead).
		Time("end_date", r.EndDate).
		Msg(r.Title + " " + r.Body)
	return nil
}

// NewSender builds the sender named by cfg.Sender.
func NewSender(cfg config.ReminderConfig) (Sender, error) {
	switch cfg.Sender {
	case "", "log":
		return LogSender{}, nil
	case "slack":
		return NewSlackSender(cfg.SlackBotToken, cfg.SlackChannelID), nil
	case "discord":
		return NewDiscordSender(cfg.DiscordBotToken, cfg.DiscordChannelID)
	default:
		return nil, fmt.Errorf("notify: unknown sender %q", cfg.Sender)
	}
}
