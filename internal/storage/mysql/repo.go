package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketpaline/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func valTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}
	imgs, err := json.Marshal(l.Images)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertListingSQL,
		l.ID, l.Variant, l.Title, l.Price, string(l.PriceType), l.Location, l.ImageURL, string(imgs),
		l.Description, string(l.Status), l.SellerID, l.SellerName, string(l.Category),
		valInt(l.Bedrooms), valInt(l.Bathrooms), valStr(l.PhoneNumber), valStr(l.Email),
	)
	return err
}

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*7)
	for _, rv := range rs {
		if err := rv.Validate(); err != nil {
			return err
		}
		values = append(values, "(?,?,?,?,?,?,COALESCE(?, CURRENT_TIMESTAMP(3)))")
		args = append(args, rv.ID, rv.ListingID, rv.AuthorName, rv.Rating, rv.Comment, rv.Timestamp, valTime(rv.CreatedAt))
	}
	_, err := r.db.ExecContext(ctx, insertReviewsPrefix+strings.Join(values, ",")+insertReviewsOnDup, args...)
	return err
}

// AddReview inserts a new review; the stored id is returned on rv. Any id
// the caller set is ignored.
func (r *Repo) AddReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	if err := rv.Validate(); err != nil {
		return domain.Review{}, err
	}
	if _, err := r.GetListing(ctx, rv.ListingID); err != nil {
		return domain.Review{}, err
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, insertUserReviewSQL,
		rv.ListingID, rv.AuthorName, rv.Rating, rv.Comment, rv.Timestamp, rv.CreatedAt.UTC())
	if err != nil {
		return domain.Review{}, fmt.Errorf("add review to %d: %w", rv.ListingID, err)
	}
	if rv.ID, err = res.LastInsertId(); err != nil {
		return domain.Review{}, fmt.Errorf("add review to %d: %w", rv.ListingID, err)
	}
	return rv, nil
}

func (r *Repo) LogMiss(ctx context.Context, id int64, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, id, status, reason)
	return err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanListing(s rowScanner) (domain.Listing, error) {
	var (
		l                   domain.Listing
		priceType, status   string
		category            string
		imagesJSON          []byte
		desc, phone, email  sql.NullString
		bedrooms, bathrooms sql.NullInt64
	)
	if err := s.Scan(
		&l.ID, &l.Variant, &l.Title, &l.Price, &priceType, &l.Location, &l.ImageURL, &imagesJSON,
		&desc, &status, &l.SellerID, &l.SellerName, &category, &bedrooms, &bathrooms, &phone, &email,
	); err != nil {
		return domain.Listing{}, err
	}
	l.PriceType = domain.PriceType(priceType)
	l.Status = domain.Status(status)
	l.Category = domain.Category(category)
	l.Description = desc.String
	if len(imagesJSON) > 0 {
		_ = json.Unmarshal(imagesJSON, &l.Images)
	}
	if bedrooms.Valid {
		n := int(bedrooms.Int64)
		l.Bedrooms = &n
	}
	if bathrooms.Valid {
		n := int(bathrooms.Int64)
		l.Bathrooms = &n
	}
	if phone.Valid {
		l.PhoneNumber = &phone.String
	}
	if email.Valid {
		l.Email = &email.String
	}
	return l, nil
}

func scanReview(s rowScanner) (domain.Review, error) {
	var rv domain.Review
	if err := s.Scan(&rv.ID, &rv.ListingID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.Timestamp, &rv.CreatedAt); err != nil {
		return domain.Review{}, err
	}
	return rv, nil
}

func (r *Repo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx, getListingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Listing{}, err
	}
	page, err := r.ListReviews(ctx, id, domain.PageQuery{Limit: 1000})
	if err != nil {
		return domain.Listing{}, err
	}
	l.Reviews = page.Items
	return l, nil
}

// ListListings returns a variant's listings in insertion order with their
// reviews attached.
func (r *Repo) ListListings(ctx context.Context, q domain.ListingsQuery) ([]domain.Listing, error) {
	query := `SELECT` + listingColumns + "\nFROM listings l\nWHERE l.variant = ?"
	args := []any{q.Variant}
	if q.SellerID != nil {
		query += " AND l.seller_id = ?"
		args = append(args, *q.SellerID)
	}
	query += "\nORDER BY l.id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Listing{}
	index := map[int64]int{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rrows, err := r.db.QueryContext(ctx, listVariantReviewsSQL, q.Variant)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		rv, err := scanReview(rrows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[rv.ListingID]; ok {
			out[i].Reviews = append(out[i].Reviews, rv)
		}
	}
	return out, rrows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, id int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	limit := pg.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, id, limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return domain.ReviewsPage{}, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}
