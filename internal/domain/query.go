package domain

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// FilterAll keeps every chain; FilterTopluDua selects dua chains read by
// more than one person. Any ChainType is also a valid filter.
const (
	FilterAll      = "all"
	FilterTopluDua = "toplu_dua"
)

// SortKey orders a chain listing.
type SortKey string

const (
	SortNewest            SortKey = "newest"
	SortOldest            SortKey = "oldest"
	SortEndingSoon        SortKey = "ending_soon"
	SortEndingLate        SortKey = "ending_late"
	SortMostParticipants  SortKey = "most_participants"
	SortLeastParticipants SortKey = "least_participants"
)

// ListQuery is the presentation-side view over a chain listing.
type ListQuery struct {
	Filter string
	Search string
	Sort   SortKey
}

// ParseListQuery validates raw query values, applying defaults for blanks.
func ParseListQuery(filter, search, sortKey string) (ListQuery, error) {
	q := ListQuery{
		Filter: strings.ToLower(strings.TrimSpace(filter)),
		Search: strings.TrimSpace(search),
		Sort:   SortKey(strings.ToLower(strings.TrimSpace(sortKey))),
	}
	if q.Filter == "" {
		q.Filter = FilterAll
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	if q.Filter != FilterAll && q.Filter != FilterTopluDua && !ChainType(q.Filter).Valid() {
		return q, fmt.Errorf("unknown filter %q", filter)
	}
	switch q.Sort {
	case SortNewest, SortOldest, SortEndingSoon, SortEndingLate, SortMostParticipants, SortLeastParticipants:
	default:
		return q, fmt.Errorf("unknown sort %q", sortKey)
	}
	return q, nil
}

// Matches reports whether c passes the filter and search terms.
func (q ListQuery) Matches(c *Chain) bool {
	switch q.Filter {
	case "", FilterAll:
	case FilterTopluDua:
		if c.Type != ChainDua || len(c.Participants) <= 1 {
			return false
		}
	default:
		if string(c.Type) != q.Filter {
			return false
		}
	}
	if q.Search == "" {
		return true
	}
	fold := cases.Fold()
	needle := fold.String(q.Search)
	return strings.Contains(fold.String(c.Title), needle) ||
		strings.Contains(fold.String(c.Description), needle) ||
		strings.Contains(fold.String(c.CreatedByName), needle)
}

// Apply filters chains into a new slice and stable-sorts it, so ties keep
// their input order.
func (q ListQuery) Apply(chains []Chain) []Chain {
	out := make([]Chain, 0, len(chains))
	for i := range chains {
		if q.Matches(&chains[i]) {
			out = append(out, chains[i])
		}
	}
	less := q.less()
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func (q ListQuery) less() func(a, b *Chain) bool {
	switch q.Sort {
	case SortOldest:
		return func(a, b *Chain) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortEndingSoon:
		return func(a, b *Chain) bool { return a.EndDate.Before(b.EndDate) }
	case SortEndingLate:
		return func(a, b *Chain) bool { return a.EndDate.After(b.EndDate) }
	case SortMostParticipants:
		return func(a, b *Chain) bool { return len(a.Participants) > len(b.Participants) }
	case SortLeastParticipants:
		return func(a, b *Chain) bool { return len(a.Participants) < len(b.Participants) }
	default:
		return func(a, b *Chain) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}

// MatchesCode reports whether code is a case-insensitive substring of the
// chain's ID or title. An empty code matches nothing.
func MatchesCode(c *Chain, code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	fold := cases.Fold()
	needle := fold.String(code)
	return strings.Contains(fold.String(c.ID), needle) ||
		strings.Contains(fold.String(c.Title), needle)
}
