// Package notify is the reminder side of hatimd. It plans end-date reminders
// for open chains, dispatches them on a cron schedule through a Sender (log,
// Slack or Discord), and listens to chain events so finished or deleted
// chains stop being reminded.
package notify

import (
	"fmt"
	"time"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
)

// Lead is how long before a chain's end date a reminder fires.
type Lead struct {
	Tag    string
	Before time.Duration
	Text   string // fmt verb %q takes the chain title
}

// Leads are the reminders planned for every open chain.
var Leads = []Lead{
	{Tag: "1d", Before: 24 * time.Hour, Text: "%q zincirine 1 gün kaldı."},
	{Tag: "3h", Before: 3 * time.Hour, Text: "%q zincirine 3 saat kaldı!"},
}

// ReminderTitle heads every chain reminder.
const ReminderTitle = "Zincir Bitiyor!"

// Reminder is one message due at At.
type Reminder struct {
	ID      string // chain_<tag>_<chain id>, stable across sweeps
	ChainID string
	Lead    string
	Title   string
	Body    string
	At      time.Time
	EndDate time.Time
}

// ReminderID names the reminder for a chain and lead tag.
func ReminderID(tag, chainID string) string {
	return "chain_" + tag + "_" + chainID
}

// PlanReminders returns the reminders still ahead of now for c. Completed
// chains, chains without an end date and trigger times at or before now get
// nothing.
func PlanReminders(c domain.Chain, now time.Time) []Reminder {
	if c.IsCompleted || c.EndDate.IsZero() {
		return nil
	}
	var out []Reminder
	for _, l := range Leads {
		at := c.EndDate.Add(-l.Before)
		if !at.After(now) {
			continue
		}
		out = append(out, Reminder{
			ID:      ReminderID(l.Tag, c.ID),
			ChainID: c.ID,
			Lead:    l.Tag,
			Title:   ReminderTitle,
			Body:    fmt.Sprintf(l.Text, c.Title),
			At:      at,
			EndDate: c.EndDate,
		})
	}
	return out
}
