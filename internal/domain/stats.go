package domain

// UserStats aggregates one user's activity across chains. Counts only;
// there is no scoring.
type UserStats struct {
	UserID          string `json:"user_id"`
	ChainsCreated   int    `json:"chains_created"`
	ChainsJoined    int    `json:"chains_joined"`
	PartsTaken      int    `json:"parts_taken"`
	PartsCompleted  int    `json:"parts_completed"`
	JuzCompleted    int    `json:"juz_completed"`
	SurahsCompleted int    `json:"surahs_completed"`
}

// AggregateUserStats tallies userID's chains and parts. A chain the user
// created also counts as joined, since the owner is always a participant.
func AggregateUserStats(chains []Chain, userID string) UserStats {
	s := UserStats{UserID: userID}
	for i := range chains {
		c := &chains[i]
		if c.CreatedBy == userID {
			s.ChainsCreated++
		}
		if c.HasParticipant(userID) {
			s.ChainsJoined++
		}
		for _, p := range c.Parts {
			if p.TakenBy != userID {
				continue
			}
			switch p.Status {
			case PartTaken:
				s.PartsTaken++
			case PartCompleted:
				s.PartsCompleted++
				switch c.Type {
				case ChainHatim:
					s.JuzCompleted++
				case ChainSure:
					s.SurahsCompleted++
				}
			}
		}
	}
	return s
}
