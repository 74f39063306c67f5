package domain

import "context"

type ListingRepository interface {
	// Write paths
	UpsertListing(ctx context.Context, l Listing) error
	UpsertReviews(ctx context.Context, rs []Review) error
	AddReview(ctx context.Context, r Review) (Review, error)
	LogMiss(ctx context.Context, id int64, status int, reason string) error

	// Read paths
	GetListing(ctx context.Context, id int64) (Listing, error)
	ListListings(ctx context.Context, q ListingsQuery) ([]Listing, error)
	ListReviews(ctx context.Context, id int64, pg PageQuery) (ReviewsPage, error)
}

// CatalogFeed is an upstream listing source used for seeding and live refresh.
type CatalogFeed interface {
	GetListing(ctx context.Context, id int64) (map[string]any, error)
	GetReviews(ctx context.Context, id int64, count int) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Sharer is the native share capability of a client surface, when it has one.
type Sharer interface {
	Share(ctx context.Context, p SharePayload) error
}

type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Read models & queries
type ListingsQuery struct {
	Variant  string
	SellerID *int64
	Limit    int
}

type PageQuery struct {
	Limit  int
	Cursor *string
	Sort   string
}

type ReviewsPage struct {
	Items      []Review `json:"items"`
	NextCursor *string  `json:"next_cursor,omitempty"`
}
