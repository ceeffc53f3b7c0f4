package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackSender posts reminders to one channel with a bot token.
type SlackSender struct {
	client    slackClient
	channelID string
}

// NewSlackSender creates a sender backed by the Slack Web API.
func NewSlackSender(botToken, channelID string) *SlackSender {
	return &SlackSender{client: slack.New(botToken), channelID: channelID}
}

func (s *SlackSender) Send(ctx context.Context, r Reminder) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channelID, slackOptions(r)...)
	if err != nil {
		return fmt.Errorf("slack: post %s: %w", r.ID, err)
	}
	return nil
}

// slackOptions renders a reminder as a header plus a section block, with
// plain text as the notification fallback.
func slackOptions(r Reminder) []slack.MsgOption {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, r.Title, true, false))
	body := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, r.Body, false, false), nil, nil)
	ctx := slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType,
		fmt.Sprintf("bitiş: <!date^%d^{date_short_pretty} {time}|%s>", r.EndDate.Unix(), r.EndDate.UTC().Format("2006-01-02 15:04 UTC")), false, false))
	return []slack.MsgOption{
		slack.MsgOptionText(r.Title+" "+r.Body, false),
		slack.MsgOptionBlocks(header, body, ctx),
	}
}
