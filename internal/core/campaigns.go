package core

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status selects campaigns by deadline
type Status string

const (
	StatusAll    Status = "all"
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// SortBy orders campaigns
type SortBy string

const (
	SortNewest      SortBy = "newest"
	SortEndingSoon  SortBy = "endingSoon"
	SortMostFunded  SortBy = "mostFunded"
	SortLeastFunded SortBy = "leastFunded"
)

// CampaignQuery is the search text, status filter and sort order for a listing
type CampaignQuery struct {
	Text   string
	Status Status
	SortBy SortBy
}

// ParseStatus parses a status filter; the empty string means all
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusActive, StatusEnded:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status filter %q", s)
	}
}

// ParseSortBy parses a sort order; the empty string means newest
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "", SortNewest:
		return SortNewest, nil
	case SortEndingSoon, SortMostFunded, SortLeastFunded:
		return SortBy(s), nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Search keeps the campaigns whose title, description and owner contain every
// whitespace-separated query token, ignoring case. An empty query returns
// records unchanged.
func Search(records []Campaign, query string) []Campaign {
	lower := cases.Lower(language.Und)
	tokens := strings.Fields(lower.String(strings.TrimSpace(query)))
	if len(tokens) == 0 {
		return records
	}

	matched := make([]Campaign, 0, len(records))
	for _, record := range records {
		haystack := lower.String(record.Title + " " + record.Description + " " + record.Owner)
		if containsAll(haystack, tokens) {
			matched = append(matched, record)
		}
	}
	return matched
}

func containsAll(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

// FilterByStatus keeps active or ended campaigns relative to now
func FilterByStatus(records []Campaign, status Status, now time.Time) []Campaign {
	if status != StatusActive && status != StatusEnded {
		return records
	}

	wantActive := status == StatusActive
	filtered := make([]Campaign, 0, len(records))
	for i := range records {
		if records[i].Active(now) == wantActive {
			filtered = append(filtered, records[i])
		}
	}
	return filtered
}

// Sort returns a stably sorted copy of records
func Sort(records []Campaign, sortBy SortBy) []Campaign {
	sorted := make([]Campaign, len(records))
	copy(sorted, records)

	var less func(a, b *Campaign) bool
	switch sortBy {
	case SortEndingSoon:
		less = func(a, b *Campaign) bool { return a.Deadline < b.Deadline }
	case SortMostFunded:
		less = func(a, b *Campaign) bool { return amount(a.AmountCollected).Cmp(amount(b.AmountCollected)) > 0 }
	case SortLeastFunded:
		less = func(a, b *Campaign) bool { return amount(a.AmountCollected).Cmp(amount(b.AmountCollected)) < 0 }
	default:
		less = func(a, b *Campaign) bool { return a.Deadline > b.Deadline }
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(&sorted[i], &sorted[j])
	})
	return sorted
}

var zero = new(big.Int)

func amount(v *big.Int) *big.Int {
	if v == nil {
		return zero
	}
	return v
}

// Apply runs search over the full set, then the status filter, then sorts
func Apply(records []Campaign, query CampaignQuery, now time.Time) []Campaign {
	found := Search(records, query.Text)
	filtered := FilterByStatus(found, query.Status, now)
	return Sort(filtered, query.SortBy)
}
