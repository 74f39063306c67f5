package query

import (
	"math/rand/v2"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
)

// Shuffler reorders a listing slice in place. It stands in for a re-fetch.
type Shuffler func([]domain.Listing)

// RandomShuffle is the default refresh reordering.
func RandomShuffle(ls []domain.Listing) {
	rand.Shuffle(len(ls), func(i, j int) { ls[i], ls[j] = ls[j], ls[i] })
}

// Browser holds the browse inputs and keeps the derived result current: any
// setter recomputes it. Not safe for concurrent use.
type Browser struct {
	variant catalog.Variant
	source  []domain.Listing
	query   Query
	result  Result
}

func NewBrowser(v catalog.Variant, listings []domain.Listing) *Browser {
	b := &Browser{variant: v, query: Query{Bucket: v.Buckets[0], Sort: SortRecent}}
	b.SetListings(listings)
	return b
}

func (b *Browser) SetListings(ls []domain.Listing) {
	b.source = append([]domain.Listing(nil), ls...)
	b.recompute()
}

// SelectBucket applies a filter chip. Selecting the active chip again is a
// no-op; unknown ids fall back to "all".
func (b *Browser) SelectBucket(id string) {
	bk, _ := b.variant.Bucket(id)
	b.query.Bucket = bk
	b.recompute()
}

func (b *Browser) SetSearch(s string) {
	b.query.Search = s
	b.recompute()
}

func (b *Browser) SetSort(s SortOption) {
	b.query.Sort = s
	b.recompute()
}

// Refresh reorders the displayed result with fn. The source keeps its order,
// so the next filter, search or sort change derives from it again.
func (b *Browser) Refresh(fn Shuffler) {
	if fn == nil {
		fn = RandomShuffle
	}
	items := append([]domain.Listing(nil), b.result.Items...)
	fn(items)
	b.result = Result{Items: items, Count: len(items)}
}

func (b *Browser) Query() Query             { return b.query }
func (b *Browser) Result() Result           { return b.result }
func (b *Browser) Variant() catalog.Variant { return b.variant }

func (b *Browser) recompute() { b.result = Apply(b.source, b.query) }
