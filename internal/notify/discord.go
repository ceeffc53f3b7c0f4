package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// embedColor is the accent used on reminder embeds.
const embedColor = 0xE67E22

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSender posts reminders as embeds to one channel. It only uses the
// REST API; no gateway connection is opened.
type DiscordSender struct {
	sess      session
	channelID string
}

// NewDiscordSender creates a sender authenticated with a bot token.
func NewDiscordSender(botToken, channelID string) (*DiscordSender, error) {
	dg, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &DiscordSender{sess: dg, channelID: channelID}, nil
}

func (s *DiscordSender) Send(ctx context.Context, r Reminder) error {
	_, err := s.sess.ChannelMessageSendEmbed(s.channelID, reminderEmbed(r), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: send %s: %w", r.ID, err)
	}
	return nil
}

func reminderEmbed(r Reminder) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: r.Body,
		Color:       embedColor,
		Timestamp:   r.EndDate.UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: r.ID},
	}
}
