package query_test

import (
	"testing"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	"marketpaline/internal/query"
)

func mk(id int64, title, loc string, price int64, c domain.Category) domain.Listing {
	return domain.Listing{ID: id, Title: title, Location: loc, Price: price, Category: c}
}

func general(t *testing.T) catalog.Variant {
	t.Helper()
	v, err := catalog.Lookup(catalog.General)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func ids(ls []domain.Listing) []int64 {
	out := make([]int64, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func equal(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply_ForSaleBucket(t *testing.T) {
	v := general(t)
	src := []domain.Listing{
		mk(1, "House", "A", 1, domain.CategoryHouseRental),
		mk(2, "Land", "B", 2, domain.CategoryLandSale),
		mk(3, "Car", "C", 3, domain.CategoryCarSale),
		mk(4, "Hire", "D", 4, domain.CategoryCarHire),
		mk(5, "Phone", "E", 5, domain.CategoryElectronicsSale),
	}
	b, _ := v.Bucket("for_sale")
	got := query.Apply(src, query.Query{Bucket: b})
	if !equal(ids(got.Items), []int64{2, 3, 5}) {
		t.Fatalf("unexpected for_sale result: %v", ids(got.Items))
	}
}

func TestApply_SearchMatchesOnceAcrossFields(t *testing.T) {
	v := general(t)
	src := []domain.Listing{
		mk(1, "3 Bedroom House in Area 49", "Area 49, Lilongwe", 500000, domain.CategoryHouseRental),
		mk(2, "Flat", "Area 10", 49000, domain.CategoryHouseRental),
		mk(3, "Car", "Blantyre", 120000, domain.CategoryCarHire),
	}
	got := query.Apply(src, query.Query{Bucket: v.Buckets[0], Search: " 49 "})
	if !equal(ids(got.Items), []int64{1, 2}) {
		t.Fatalf("unexpected search result: %v", ids(got.Items))
	}

	got = query.Apply(src, query.Query{Bucket: v.Buckets[0], Search: "LILONGWE"})
	if !equal(ids(got.Items), []int64{1}) {
		t.Fatalf("search should be case-insensitive: %v", ids(got.Items))
	}
}

func TestApply_SortOrders(t *testing.T) {
	v := general(t)
	src := []domain.Listing{
		mk(1, "a", "", 500000, domain.CategoryHouseRental),
		mk(2, "b", "", 120000, domain.CategoryHouseRental),
		mk(3, "c", "", 800000, domain.CategoryHouseRental),
	}
	cases := []struct {
		sort query.SortOption
		want []int64
	}{
		{query.SortPriceAsc, []int64{2, 1, 3}},
		{query.SortPriceDesc, []int64{3, 1, 2}},
		{query.SortRecent, []int64{1, 2, 3}},
	}
	for _, c := range cases {
		got := query.Apply(src, query.Query{Bucket: v.Buckets[0], Sort: c.sort})
		if !equal(ids(got.Items), c.want) {
			t.Fatalf("%s: got %v want %v", c.sort, ids(got.Items), c.want)
		}
	}
	if !equal(ids(src), []int64{1, 2, 3}) {
		t.Fatalf("source was mutated: %v", ids(src))
	}
}

func TestApply_SortIsStableOnTies(t *testing.T) {
	v := general(t)
	src := []domain.Listing{
		mk(1, "a", "", 100, domain.CategoryHouseRental),
		mk(2, "b", "", 50, domain.CategoryHouseRental),
		mk(3, "c", "", 100, domain.CategoryHouseRental),
	}
	got := query.Apply(src, query.Query{Bucket: v.Buckets[0], Sort: query.SortPriceDesc})
	if !equal(ids(got.Items), []int64{1, 3, 2}) {
		t.Fatalf("ties reordered: %v", ids(got.Items))
	}
}

func TestApply_EmptyIsValid(t *testing.T) {
	v := general(t)
	got := query.Apply([]domain.Listing{mk(1, "a", "", 1, domain.CategoryHouseRental)},
		query.Query{Bucket: v.Buckets[0], Search: "zzz"})
	if !got.Empty() || got.Items == nil {
		t.Fatalf("expected empty non-nil result, got %+v", got)
	}
}

func TestParseSort(t *testing.T) {
	if query.ParseSort("PRICE_ASC") != query.SortPriceAsc || query.ParseSort("bogus") != query.SortRecent {
		t.Fatalf("unexpected parse")
	}
}

func TestBrowser_SelectBucketIsIdempotent(t *testing.T) {
	v := general(t)
	src := []domain.Listing{
		mk(1, "a", "", 1, domain.CategoryHouseRental),
		mk(2, "b", "", 2, domain.CategoryCarHire),
	}
	b := query.NewBrowser(v, src)
	b.SelectBucket("car")
	first := ids(b.Result().Items)
	b.SelectBucket("car")
	if !equal(first, ids(b.Result().Items)) || !equal(first, []int64{2}) {
		t.Fatalf("reselect changed result: %v -> %v", first, ids(b.Result().Items))
	}
}

func TestBrowser_SettersRecompute(t *testing.T) {
	v := general(t)
	src := []domain.Listing{
		mk(1, "House", "Zomba", 300, domain.CategoryHouseRental),
		mk(2, "Venue", "Salima", 100, domain.CategoryEventVenueHire),
		mk(3, "House", "Mzuzu", 200, domain.CategoryHouseRental),
	}
	b := query.NewBrowser(v, src)
	b.SetSearch("house")
	b.SetSort(query.SortPriceAsc)
	if !equal(ids(b.Result().Items), []int64{3, 1}) {
		t.Fatalf("got %v", ids(b.Result().Items))
	}
	b.SelectBucket("event_venue_hire")
	if !b.Result().Empty() {
		t.Fatalf("expected no results, got %v", ids(b.Result().Items))
	}
}

func TestBrowser_Refresh(t *testing.T) {
	v := general(t)
	src := []domain.Listing{
		mk(1, "a", "", 1, domain.CategoryHouseRental),
		mk(2, "b", "", 2, domain.CategoryHouseRental),
	}
	b := query.NewBrowser(v, src)
	b.Refresh(func(ls []domain.Listing) { ls[0], ls[1] = ls[1], ls[0] })
	if !equal(ids(b.Result().Items), []int64{2, 1}) {
		t.Fatalf("refresh did not reorder: %v", ids(b.Result().Items))
	}
	if !equal(ids(src), []int64{1, 2}) {
		t.Fatalf("refresh mutated caller slice")
	}

	// the next input change derives from the untouched source again
	b.SetSearch("")
	if !equal(ids(b.Result().Items), []int64{1, 2}) {
		t.Fatalf("recompute should restore source order: %v", ids(b.Result().Items))
	}

	// refresh under a price sort still visibly reorders
	b.SetSort(query.SortPriceDesc)
	b.Refresh(func(ls []domain.Listing) { ls[0], ls[1] = ls[1], ls[0] })
	if !equal(ids(b.Result().Items), []int64{1, 2}) || b.Result().Count != 2 {
		t.Fatalf("refresh under price sort: %v", ids(b.Result().Items))
	}
}
