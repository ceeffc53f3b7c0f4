package domain

import "math"

// Progress summarizes part states for display.
type Progress struct {
	Percent   int `json:"percent"`
	Completed int `json:"completed"`
	Taken     int `json:"taken"`
	Available int `json:"available"`
}

// GetProgress counts parts by status. Percent is completed over the part
// count, rounded half away from zero; a chain without parts yields zeros.
func GetProgress(c *Chain) Progress {
	var p Progress
	if c == nil {
		return p
	}
	for _, part := range c.Parts {
		switch part.Status {
		case PartCompleted:
			p.Completed++
		case PartTaken:
			p.Taken++
		case PartAvailable:
			p.Available++
		}
	}
	if n := len(c.Parts); n > 0 {
		p.Percent = int(math.Round(100 * float64(p.Completed) / float64(n)))
	}
	return p
}
