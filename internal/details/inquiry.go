package details

import (
	"fmt"
	"strings"
	"time"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
)

// InquiryTemplate pre-fills the inquiry message.
func InquiryTemplate(l domain.Listing) string {
	return fmt.Sprintf("Hi %s, I'm interested in \"%s\" at %s. I'd like to know more details. Thank you!",
		l.SellerName, l.Title, l.Location)
}

type Inquiry struct {
	ListingID int64  `json:"listing_id"`
	SellerID  int64  `json:"seller_id"`
	Message   string `json:"message"`
}

func NewInquiry(l domain.Listing, message string) (Inquiry, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Inquiry{}, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	return Inquiry{ListingID: l.ID, SellerID: l.SellerID, Message: message}, nil
}

type ViewingRequest struct {
	ListingID int64  `json:"listing_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// NewViewingRequest requires a date (YYYY-MM-DD, not before today) and a
// time (HH:MM) for a category the variant offers viewings for.
func NewViewingRequest(v catalog.Variant, l domain.Listing, date, clock string, today time.Time) (ViewingRequest, error) {
	if !v.IsViewable(l.Category) {
		return ViewingRequest{}, fmt.Errorf("%w: viewings are not offered for %s", domain.ErrInvalidInput, l.Category.Label())
	}
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return ViewingRequest{}, fmt.Errorf("%w: date and time are required", domain.ErrInvalidInput)
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return ViewingRequest{}, fmt.Errorf("%w: date %q", domain.ErrInvalidInput, date)
	}
	y, m, dd := today.Date()
	if d.Before(time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)) {
		return ViewingRequest{}, fmt.Errorf("%w: date %s is in the past", domain.ErrInvalidInput, date)
	}
	if _, err := time.Parse("15:04", clock); err != nil {
		return ViewingRequest{}, fmt.Errorf("%w: time %q", domain.ErrInvalidInput, clock)
	}
	return ViewingRequest{ListingID: l.ID, Date: date, Time: clock}, nil
}
