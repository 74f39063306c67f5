// Package query derives the visible listing list from the browse inputs:
// category bucket, free-text search and sort order.
package query

import (
	"sort"
	"strconv"
	"strings"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
)

type SortOption string

const (
	SortRecent    SortOption = "recent"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
)

// ParseSort maps a wire value to a sort option; anything unknown is "recent".
func ParseSort(s string) SortOption {
	switch SortOption(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	}
	return SortRecent
}

type Query struct {
	Bucket catalog.Bucket
	Search string
	Sort   SortOption
}

type Result struct {
	Items []domain.Listing `json:"items"`
	Count int              `json:"count"`
}

// Empty means nothing matched; it is a normal outcome rendered as "no results".
func (r Result) Empty() bool { return r.Count == 0 }

// Apply filters by bucket, then by search, then sorts. The input slice is
// never reordered.
func Apply(src []domain.Listing, q Query) Result {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Listing, 0, len(src))
	for _, l := range src {
		if !q.Bucket.Matches(l.Category) {
			continue
		}
		if needle != "" && !matches(l, needle) {
			continue
		}
		out = append(out, l)
	}

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return Result{Items: out, Count: len(out)}
}

func matches(l domain.Listing, needle string) bool {
	return strings.Contains(strings.ToLower(l.Title), needle) ||
		strings.Contains(strings.ToLower(l.Location), needle) ||
		strings.Contains(strconv.FormatInt(l.Price, 10), needle)
}
