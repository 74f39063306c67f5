package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"marketpaline/internal/contracts"
	"marketpaline/internal/domain"
)

/********** alias registries (single source of truth) **********/

var listingAliases = map[string][]string{
	"id":          {"id", "listing_id", "listingId"},
	"title":       {"title", "name", "headline"},
	"price":       {"price", "amount", "price.amount"},
	"price_type":  {"price_type", "priceType", "price.period", "period"},
	"location":    {"location", "address", "location.name", "city", "area"},
	"image":       {"image_url", "imageUrl", "cover", "thumbnail"},
	"images":      {"images", "photos", "gallery"},
	"description": {"description", "details", "body"},
	"status":      {"status", "state", "availability"},
	"seller_id":   {"seller_id", "sellerId", "owner.id", "landlord_id"},
	"seller_name": {"seller_name", "sellerName", "owner.name", "landlord_name", "agent"},
	"category":    {"category", "type", "listing_type"},
	"bedrooms":    {"bedrooms", "beds", "rooms.bedrooms"},
	"bathrooms":   {"bathrooms", "baths", "rooms.bathrooms"},
	"phone":       {"phone_number", "phone", "contact.phone"},
	"email":       {"email", "contact.email"},
}

var reviewAliases = map[string][]string{
	"id":        {"id", "review_id", "reviewId"},
	"author":    {"author_name", "author", "name", "reviewer", "reviewer.name"},
	"rating":    {"rating", "stars", "score", "rating.value"},
	"comment":   {"comment", "text", "review", "content", "body"},
	"timestamp": {"timestamp", "posted", "date"},
	"created":   {"created_at", "createdAt"},
}

// Feed vocabularies differ from ours; these fold common variants.
var statusAliases = map[string]domain.Status{
	"available":         domain.StatusAvailable,
	"active":            domain.StatusAvailable,
	"rented":            domain.StatusRented,
	"let":               domain.StatusRented,
	"sold":              domain.StatusSold,
	"pending":           domain.StatusPending,
	"under offer":       domain.StatusPending,
	"under maintenance": domain.StatusUnderMaintenance,
	"maintenance":       domain.StatusUnderMaintenance,
}

var priceTypeAliases = map[string]domain.PriceType{
	"per month": domain.PricePerMonth,
	"monthly":   domain.PricePerMonth,
	"month":     domain.PricePerMonth,
	"per day":   domain.PricePerDay,
	"daily":     domain.PricePerDay,
	"day":       domain.PricePerDay,
	"one-time":  domain.PriceOneTime,
	"once":      domain.PriceOneTime,
	"sale":      domain.PriceOneTime,
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstString(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstFloat: number from several paths (float64/int/string like "4,5").
func firstFloat(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstInt64: int64 from several paths; price strings like "MK 120,000" are
// stripped down to their digits.
func firstInt64(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			return &v
		case string:
			digits := strings.Map(func(r rune) rune {
				if r >= '0' && r <= '9' {
					return r
				}
				return -1
			}, v)
			if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

func firstInt(m map[string]any, paths ...string) *int {
	if v := firstInt64(m, paths...); v != nil {
		x := int(*v)
		return &x
	}
	return nil
}

// firstSliceStrings: accept []any with either strings or {url/src}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				if u, ok := t["url"].(string); ok && u != "" {
					out = append(out, u)
				} else if u, ok := t["src"].(string); ok && u != "" {
					out = append(out, u)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(s, "_", " "))), " ")
}

/********** listing mapper **********/

// mapListing validates a feed payload and maps it onto a listing of variant.
// Unknown status and price type values fall back to Available / one-time;
// the category must be one of ours.
func mapListing(variant string, p map[string]any) (domain.Listing, error) {
	if err := contracts.Validate(contracts.Listing, p); err != nil {
		return domain.Listing{}, fmt.Errorf("%w: %v", domain.ErrInvalidListing, err)
	}

	l := domain.Listing{
		Variant:     variant,
		Title:       firstString(p, listingAliases, "title"),
		Location:    firstString(p, listingAliases, "location"),
		ImageURL:    firstString(p, listingAliases, "image"),
		Images:      firstSliceStrings(p, listingAliases["images"]...),
		Description: firstString(p, listingAliases, "description"),
		SellerName:  firstString(p, listingAliases, "seller_name"),
		Category:    domain.Category(strings.ReplaceAll(normalizeKey(firstString(p, listingAliases, "category")), " ", "_")),
		Bedrooms:    firstInt(p, listingAliases["bedrooms"]...),
		Bathrooms:   firstInt(p, listingAliases["bathrooms"]...),
		PhoneNumber: ptrStr(firstString(p, listingAliases, "phone")),
		Email:       ptrStr(firstString(p, listingAliases, "email")),
	}
	if v := firstInt64(p, listingAliases["id"]...); v != nil {
		l.ID = *v
	}
	if l.ID <= 0 {
		return domain.Listing{}, fmt.Errorf("%w: missing id", domain.ErrInvalidListing)
	}
	if v := firstInt64(p, listingAliases["price"]...); v != nil {
		l.Price = *v
	}
	if v := firstInt64(p, listingAliases["seller_id"]...); v != nil {
		l.SellerID = *v
	}

	l.Status = domain.StatusAvailable
	if s, ok := statusAliases[normalizeKey(firstString(p, listingAliases, "status"))]; ok {
		l.Status = s
	}
	l.PriceType = domain.PriceOneTime
	if pt, ok := priceTypeAliases[normalizeKey(firstString(p, listingAliases, "price_type"))]; ok {
		l.PriceType = pt
	}
	if l.ImageURL == "" && len(l.Images) > 0 {
		l.ImageURL = l.Images[0]
	}

	if err := l.Validate(); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

/********** reviews mapper **********/

// mapReviews keeps the valid reviews of a feed page and reports how many
// were dropped. Ratings above 5 are read as a 0..10 score.
func mapReviews(listingID int64, in []map[string]any, now time.Time) ([]domain.Review, int) {
	out := make([]domain.Review, 0, len(in))
	dropped := 0
	for i, r := range in {
		if err := contracts.Validate(contracts.Review, r); err != nil {
			dropped++
			continue
		}
		rv := domain.Review{
			ListingID:  listingID,
			AuthorName: firstString(r, reviewAliases, "author"),
			Comment:    firstString(r, reviewAliases, "comment"),
			Timestamp:  firstString(r, reviewAliases, "timestamp"),
			CreatedAt:  now.UTC(),
		}
		if f := firstFloat(r, reviewAliases["rating"]...); f != nil {
			score := *f
			if score > 5 {
				score /= 2
			}
			rv.Rating = int(score + 0.5)
		}
		if v := firstInt64(r, reviewAliases["id"]...); v != nil {
			rv.ID = *v
		} else {
			// stable synthetic id so re-seeding upserts instead of duplicating
			rv.ID = listingID*1_000_000 + int64(i) + 1
		}
		if ts := firstString(r, reviewAliases, "created"); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				rv.CreatedAt = t.UTC()
			}
		}
		if rv.AuthorName == "" {
			rv.AuthorName = "Anonymous"
		}
		if rv.Validate() != nil || rv.Comment == "" {
			dropped++
			continue
		}
		out = append(out, rv)
	}
	return out, dropped
}
