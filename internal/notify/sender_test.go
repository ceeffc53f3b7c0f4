package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/kozoukioden/HatimChainApp/internal/config"
)

func sampleReminder() Reminder {
	return PlanReminders(openChain("c1", t0.Add(48*time.Hour)), t0)[0]
}

func TestLogSender_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	if err := (LogSender{Logger: &l}).Send(context.Background(), sampleReminder()); err != nil {
		t.Fatalf("send: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("json: %v (%s)", err, buf.String())
	}
	if m["reminder_id"] != "chain_1d_c1" || m["chain_id"] != "c1" || m["lead"] != "1d" {
		t.Fatalf("fields %v", m)
	}
	if !strings.Contains(m["message"].(string), "zincirine 1 gün kaldı") {
		t.Fatalf("message %v", m["message"])
	}
}

// --- slack ---

type fakeSlack struct {
	channel string
	opts    []slack.MsgOption
	err     error
}

func (f *fakeSlack) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channel, f.opts = channelID, options
	return channelID, "1700000000.000100", f.err
}

func TestSlackSender_Send(t *testing.T) {
	fc := &fakeSlack{}
	s := &SlackSender{client: fc, channelID: "C123"}
	if err := s.Send(context.Background(), sampleReminder()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if fc.channel != "C123" || len(fc.opts) != 2 {
		t.Fatalf("posted to %q with %d options", fc.channel, len(fc.opts))
	}

	// options render to a chat.postMessage form with text and blocks
	_, values, err := slack.UnsafeApplyMsgOptions("xoxb-test", "C123", "https://slack.com/api/", fc.opts...)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !strings.Contains(values.Get("text"), "zincirine 1 gün kaldı") {
		t.Fatalf("text = %q", values.Get("text"))
	}
	if blocks := values.Get("blocks"); !strings.Contains(blocks, `"type":"header"`) || !strings.Contains(blocks, "<!date^") {
		t.Fatalf("blocks = %s", blocks)
	}

	fc.err = errors.New("channel_not_found")
	if err := s.Send(context.Background(), sampleReminder()); err == nil || !strings.Contains(err.Error(), "chain_1d_c1") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

// --- discord ---

type fakeSession struct {
	channel string
	embed   *discordgo.MessageEmbed
	nOpts   int
	err     error
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel, f.embed, f.nOpts = channelID, embed, len(options)
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func TestDiscordSender_Send(t *testing.T) {
	fs := &fakeSession{}
	s := &DiscordSender{sess: fs, channelID: "42"}
	r := sampleReminder()
	if err := s.Send(context.Background(), r); err != nil {
		t.Fatalf("send: %v", err)
	}
	if fs.channel != "42" || fs.nOpts != 1 {
		t.Fatalf("channel %q opts %d", fs.channel, fs.nOpts)
	}
	e := fs.embed
	if e.Title != ReminderTitle || e.Description != r.Body || e.Color != embedColor || e.Footer.Text != r.ID || e.Timestamp == "" {
		t.Fatalf("embed %+v", e)
	}

	fs.err = errors.New("403 Forbidden")
	if err := s.Send(context.Background(), r); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewSender(t *testing.T) {
	if s, err := NewSender(config.ReminderConfig{Sender: "log"}); err != nil {
		t.Fatalf("log: %v", err)
	} else if _, ok := s.(LogSender); !ok {
		t.Fatalf("log sender type %T", s)
	}

	s, err := NewSender(config.ReminderConfig{Sender: "slack", SlackBotToken: "xoxb-1", SlackChannelID: "C1"})
	if ss, ok := s.(*SlackSender); err != nil || !ok || ss.channelID != "C1" {
		t.Fatalf("slack: %T %v", s, err)
	}

	s, err = NewSender(config.ReminderConfig{Sender: "discord", DiscordBotToken: "tok", DiscordChannelID: "42"})
	if ds, ok := s.(*DiscordSender); err != nil || !ok || ds.channelID != "42" {
		t.Fatalf("discord: %T %v", s, err)
	}

	if _, err := NewSender(config.ReminderConfig{Sender: "sms"}); err == nil {
		t.Fatalf("expected error for unknown sender")
	}
}
