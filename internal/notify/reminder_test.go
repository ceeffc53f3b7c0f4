package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func openChain(id string, end time.Time) domain.Chain {
	return domain.Chain{ID: id, Title: "Ramazan hatmi", EndDate: end}
}

func TestPlanReminders(t *testing.T) {
	tests := []struct {
		name  string
		chain domain.Chain
		want  []string
	}{
		{"both ahead", openChain("c1", t0.Add(48*time.Hour)), []string{"chain_1d_c1", "chain_3h_c1"}},
		{"only 3h ahead", openChain("c2", t0.Add(10*time.Hour)), []string{"chain_3h_c2"}},
		{"3h trigger exactly now", openChain("c3", t0.Add(3*time.Hour)), nil},
		{"past end", openChain("c4", t0.Add(-time.Hour)), nil},
		{"no end date", openChain("c5", time.Time{}), nil},
		{"completed", func() domain.Chain { c := openChain("c6", t0.Add(48*time.Hour)); c.IsCompleted = true; return c }(), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PlanReminders(tc.chain, t0)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d reminders, want %v", len(got), tc.want)
			}
			for i, r := range got {
				if r.ID != tc.want[i] || r.ChainID != tc.chain.ID || !r.EndDate.Equal(tc.chain.EndDate) {
					t.Fatalf("reminder %d = %+v", i, r)
				}
			}
		})
	}
}

func TestPlanReminders_TimesAndText(t *testing.T) {
	end := t0.Add(72 * time.Hour)
	got := PlanReminders(openChain("c1", end), t0)

	if !got[0].At.Equal(end.Add(-24*time.Hour)) || !got[1].At.Equal(end.Add(-3*time.Hour)) {
		t.Fatalf("trigger times %v %v", got[0].At, got[1].At)
	}
	if got[0].Title != ReminderTitle || got[0].Body != `"Ramazan hatmi" zincirine 1 gün kaldı.` {
		t.Fatalf("1d text %q / %q", got[0].Title, got[0].Body)
	}
	if !strings.Contains(got[1].Body, "3 saat kaldı!") || got[1].Lead != "3h" {
		t.Fatalf("3h reminder %+v", got[1])
	}
}

func TestReminderID(t *testing.T) {
	if got := ReminderID("1d", "abc"); got != "chain_1d_abc" {
		t.Fatalf("ReminderID = %q", got)
	}
}
