package domain

// Reason explains why a part transition did not happen. The empty Reason
// means the chain was mutated.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNotFound     Reason = "not_found"
	ReasonWrongStatus  Reason = "wrong_status"
	ReasonNotPermitted Reason = "not_permitted"
	ReasonConflict     Reason = "conflict"
)

// Op names a part transition.
type Op string

const (
	OpClaim         Op = "claim"
	OpComplete      Op = "complete"
	OpForceComplete Op = "force_complete"
	OpRelease       Op = "release"
)

// Claim moves part n from available to taken by userID and enrolls the
// user as a participant. Any other starting status leaves c untouched.
func (c *Chain) Claim(n int, userID, userName string) Reason {
	p := c.Part(n)
	if p == nil {
		return ReasonNotFound
	}
	if p.Status != PartAvailable {
		return ReasonWrongStatus
	}
	p.Status = PartTaken
	p.TakenBy = userID
	p.TakenByName = userName
	c.AddParticipant(userID)
	c.Recompute()
	return ReasonNone
}

// Complete moves part n from taken to completed. Only the claimer may
// complete their own part; the owner uses ForceComplete instead.
func (c *Chain) Complete(n int, userID string) Reason {
	p := c.Part(n)
	if p == nil {
		return ReasonNotFound
	}
	if p.Status != PartTaken {
		return ReasonWrongStatus
	}
	if p.TakenBy != userID {
		return ReasonNotPermitted
	}
	p.Status = PartCompleted
	c.Recompute()
	return ReasonNone
}

// ForceComplete lets the chain owner mark part n completed from either
// available or taken. The claimer, if any, keeps the credit.
func (c *Chain) ForceComplete(n int, actorID string) Reason {
	p := c.Part(n)
	if p == nil {
		return ReasonNotFound
	}
	if actorID != c.CreatedBy {
		return ReasonNotPermitted
	}
	if p.Status == PartCompleted {
		return ReasonWrongStatus
	}
	p.Status = PartCompleted
	c.Recompute()
	return ReasonNone
}

// Release returns a taken part to available. The claimer or the chain
// owner may release it. The claimer stays on the participant roster.
func (c *Chain) Release(n int, actorID string) Reason {
	p := c.Part(n)
	if p == nil {
		return ReasonNotFound
	}
	if p.Status != PartTaken {
		return ReasonWrongStatus
	}
	if actorID != p.TakenBy && actorID != c.CreatedBy {
		return ReasonNotPermitted
	}
	p.Status = PartAvailable
	p.TakenBy = ""
	p.TakenByName = ""
	c.Recompute()
	return ReasonNone
}

// Apply dispatches op against c.
func (c *Chain) Apply(op Op, n int, userID, userName string) Reason {
	switch op {
	case OpClaim:
		return c.Claim(n, userID, userName)
	case OpComplete:
		return c.Complete(n, userID)
	case OpForceComplete:
		return c.ForceComplete(n, userID)
	case OpRelease:
		return c.Release(n, userID)
	}
	return ReasonWrongStatus
}
