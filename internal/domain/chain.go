package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ChainSpec is the creator-supplied input for a new chain. Owner fields come
// from the authenticated caller, never from the request body.
type ChainSpec struct {
	Type               ChainType `validate:"required,oneof=hatim salavat sure dua topludua"`
	Title              string    `validate:"required,max=255"`
	Description        string    `validate:"max=4000"`
	OwnerID            string    `validate:"required,max=128"`
	OwnerName          string    `validate:"max=255"`
	StartDate          time.Time
	EndDate            time.Time
	TotalParts         int    `validate:"gte=0,lte=10000"`
	SureName           string `validate:"required_if=Type sure,max=128"`
	LiveStreamURL      string `validate:"omitempty,url,max=512"`
	NiyetDescription   string `validate:"max=4000"`
	HiddenParticipants bool
}

// SpecError describes the first rule a ChainSpec violated.
type SpecError struct {
	Field string
	Rule  string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

var validate = validator.New()

// Normalize trims text fields and resolves defaults: a missing start date
// becomes now, hatim is pinned to 30 parts, and a zero part count takes the
// per-type default. Type-specific optional fields are dropped for other types.
func (s *ChainSpec) Normalize(now time.Time) {
	s.Type = ChainType(strings.ToLower(strings.TrimSpace(string(s.Type))))
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	s.OwnerID = strings.TrimSpace(s.OwnerID)
	s.OwnerName = strings.TrimSpace(s.OwnerName)
	s.SureName = strings.TrimSpace(s.SureName)
	s.LiveStreamURL = strings.TrimSpace(s.LiveStreamURL)
	s.NiyetDescription = strings.TrimSpace(s.NiyetDescription)

	if s.StartDate.IsZero() {
		s.StartDate = now
	}
	switch {
	case s.Type == ChainHatim:
		s.TotalParts = HatimParts
	case s.TotalParts == 0:
		s.TotalParts = DefaultParts(s.Type)
	}
	if s.Type != ChainSure {
		s.SureName = ""
	}
	if s.Type != ChainTopluDua {
		s.LiveStreamURL = ""
		s.NiyetDescription = ""
		s.HiddenParticipants = false
	}
}

// Validate checks a normalized spec. It never touches persistence.
func (s ChainSpec) Validate(now time.Time) error {
	if err := validate.Struct(s); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return &SpecError{Field: fieldName(ve[0].Field()), Rule: ve[0].Tag()}
		}
		return err
	}
	if s.TotalParts < 1 {
		return &SpecError{Field: "total_parts", Rule: "gte=1"}
	}
	if !s.EndDate.After(now) {
		return &SpecError{Field: "end_date", Rule: "must be in the future"}
	}
	if s.EndDate.Before(s.StartDate) {
		return &SpecError{Field: "end_date", Rule: "must not precede start_date"}
	}
	return nil
}

// fieldName maps Go field names to the snake_case used on the wire.
func fieldName(f string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range f {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}

// NewChain builds an unsaved chain from a normalized, validated spec: every
// part available, the owner as sole participant, not completed.
func NewChain(s ChainSpec, now time.Time) *Chain {
	parts := make([]Part, s.TotalParts)
	for i := range parts {
		parts[i] = Part{Number: i + 1, Status: PartAvailable}
	}
	return &Chain{
		Type:               s.Type,
		Title:              s.Title,
		Description:        s.Description,
		CreatedBy:          s.OwnerID,
		CreatedByName:      s.OwnerName,
		StartDate:          s.StartDate.UTC(),
		EndDate:            s.EndDate.UTC(),
		TotalParts:         s.TotalParts,
		Parts:              parts,
		Participants:       []string{s.OwnerID},
		IsCompleted:        false,
		SureName:           s.SureName,
		LiveStreamURL:      s.LiveStreamURL,
		NiyetDescription:   s.NiyetDescription,
		HiddenParticipants: s.HiddenParticipants,
		Version:            1,
		CreatedAt:          now.UTC(),
		UpdatedAt:          now.UTC(),
	}
}

// Part returns the part numbered n, or nil.
func (c *Chain) Part(n int) *Part {
	if n < 1 || n > len(c.Parts) {
		return nil
	}
	if c.Parts[n-1].Number == n {
		return &c.Parts[n-1]
	}
	for i := range c.Parts {
		if c.Parts[i].Number == n {
			return &c.Parts[i]
		}
	}
	return nil
}

// HasParticipant reports whether userID is on the roster.
func (c *Chain) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// AddParticipant appends userID unless already present.
func (c *Chain) AddParticipant(userID string) {
	if userID == "" || c.HasParticipant(userID) {
		return
	}
	c.Participants = append(c.Participants, userID)
}

// AllCompleted reports whether the chain has parts and all are completed.
func (c *Chain) AllCompleted() bool {
	if len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.Status != PartCompleted {
			return false
		}
	}
	return true
}

// Recompute refreshes the IsCompleted cache from the parts and reports
// whether it changed.
func (c *Chain) Recompute() bool {
	done := c.AllCompleted()
	changed := done != c.IsCompleted
	c.IsCompleted = done
	return changed
}

// CheckInvariants verifies the structural rules every stored chain obeys.
func (c *Chain) CheckInvariants() error {
	if len(c.Parts) != c.TotalParts {
		return fmt.Errorf("chain %s: %d parts, total_parts %d", c.ID, len(c.Parts), c.TotalParts)
	}
	for i, p := range c.Parts {
		if p.Number != i+1 {
			return fmt.Errorf("chain %s: part at position %d numbered %d", c.ID, i+1, p.Number)
		}
		switch p.Status {
		case PartAvailable, PartTaken, PartCompleted:
		default:
			return fmt.Errorf("chain %s: part %d has status %q", c.ID, p.Number, p.Status)
		}
	}
	seen := make(map[string]struct{}, len(c.Participants))
	for _, u := range c.Participants {
		if _, dup := seen[u]; dup {
			return fmt.Errorf("chain %s: participant %s listed twice", c.ID, u)
		}
		seen[u] = struct{}{}
	}
	if _, ok := seen[c.CreatedBy]; !ok {
		return fmt.Errorf("chain %s: owner %s missing from participants", c.ID, c.CreatedBy)
	}
	if c.IsCompleted != c.AllCompleted() {
		return fmt.Errorf("chain %s: is_completed=%t disagrees with parts", c.ID, c.IsCompleted)
	}
	return nil
}

// HiddenParticipantName replaces claimer names on chains with hidden
// participants.
const HiddenParticipantName = "Katılımcı"

// VisibleTo returns a copy of the chain as viewerID may see it. On chains with
// hidden participants everyone but the owner sees claimers as
// HiddenParticipantName, and TakenBy stays only on the viewer's own parts.
// Other chains are returned unchanged.
func (c Chain) VisibleTo(viewerID string) Chain {
	if !c.HiddenParticipants || viewerID == c.CreatedBy {
		return c
	}
	parts := make([]Part, len(c.Parts))
	for i, p := range c.Parts {
		if p.TakenByName != "" {
			p.TakenByName = HiddenParticipantName
		}
		if p.TakenBy != viewerID {
			p.TakenBy = ""
		}
		parts[i] = p
	}
	c.Parts = parts
	return c
}
