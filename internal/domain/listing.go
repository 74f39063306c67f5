package domain

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Category string

const (
	CategoryHouseRental     Category = "house_rental"
	CategoryBedroomRental   Category = "bedroom_rental"
	CategoryEventVenueHire  Category = "event_venue_hire"
	CategoryCarHire         Category = "car_hire"
	CategoryEquipmentHire   Category = "equipment_hire"
	CategoryLandSale        Category = "land_sale"
	CategoryHouseSale       Category = "house_sale"
	CategoryCarSale         Category = "car_sale"
	CategoryElectronicsSale Category = "electronics_sale"
)

var categoryLabels = map[Category]string{
	CategoryHouseRental:     "House Rentals",
	CategoryBedroomRental:   "Bedroom Rentals",
	CategoryEventVenueHire:  "Event Venues",
	CategoryCarHire:         "Car Hire",
	CategoryEquipmentHire:   "Equipment Hire",
	CategoryLandSale:        "Land for Sale",
	CategoryHouseSale:       "Houses for Sale",
	CategoryCarSale:         "Cars for Sale",
	CategoryElectronicsSale: "Electronics for Sale",
}

func (c Category) Valid() bool { _, ok := categoryLabels[c]; return ok }

func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

type Status string

const (
	StatusAvailable        Status = "Available"
	StatusRented           Status = "Rented"
	StatusSold             Status = "Sold"
	StatusPending          Status = "Pending"
	StatusUnderMaintenance Status = "Under Maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusSold, StatusPending, StatusUnderMaintenance:
		return true
	}
	return false
}

type PriceType string

const (
	PricePerMonth PriceType = "per month"
	PricePerDay   PriceType = "per day"
	PriceOneTime  PriceType = "one-time"
)

func (p PriceType) Valid() bool {
	return p == PricePerMonth || p == PricePerDay || p == PriceOneTime
}

// Suffix is appended to a formatted price on cards and details.
func (p PriceType) Suffix() string {
	switch p {
	case PricePerMonth:
		return "/month"
	case PricePerDay:
		return "/day"
	}
	return ""
}

type Listing struct {
	ID          int64     `json:"id"`
	Variant     string    `json:"variant"`
	Title       string    `json:"title"`
	Price       int64     `json:"price"`
	PriceType   PriceType `json:"price_type"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"image_url"`
	Images      []string  `json:"images"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	SellerID    int64     `json:"seller_id"`
	SellerName  string    `json:"seller_name"`
	Category    Category  `json:"category"`
	Bedrooms    *int      `json:"bedrooms,omitempty"`
	Bathrooms   *int      `json:"bathrooms,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Reviews     []Review  `json:"reviews"`
}

// Validate checks the closed sets a listing must belong to.
func (l Listing) Validate() error {
	switch {
	case l.Title == "":
		return fmt.Errorf("%w: empty title", ErrInvalidListing)
	case l.Price < 0:
		return fmt.Errorf("%w: negative price %d", ErrInvalidListing, l.Price)
	case !l.Status.Valid():
		return fmt.Errorf("%w: status %q", ErrInvalidListing, l.Status)
	case !l.Category.Valid():
		return fmt.Errorf("%w: category %q", ErrInvalidListing, l.Category)
	case !l.PriceType.Valid():
		return fmt.Errorf("%w: price type %q", ErrInvalidListing, l.PriceType)
	}
	for _, r := range l.Reviews {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Gallery returns the image sequence, falling back to the cover image.
func (l Listing) Gallery() []string {
	if len(l.Images) > 0 {
		return l.Images
	}
	if l.ImageURL == "" {
		return nil
	}
	return []string{l.ImageURL}
}

func (l Listing) AverageRating() float64 {
	if len(l.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range l.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(l.Reviews))
}

var pricePrinter = message.NewPrinter(language.English)

// FormatMK renders an amount in kwacha with thousands separators.
func FormatMK(n int64) string { return pricePrinter.Sprintf("MK %d", n) }

// FormattedPrice renders "MK 120,000/month".
func (l Listing) FormattedPrice() string { return FormatMK(l.Price) + l.PriceType.Suffix() }

// Clone copies the listing including its slices so callers can mutate freely.
func (l Listing) Clone() Listing {
	out := l
	if l.Images != nil {
		out.Images = append([]string(nil), l.Images...)
	}
	if l.Reviews != nil {
		out.Reviews = append([]Review(nil), l.Reviews...)
	}
	return out
}

type Review struct {
	ID         int64     `json:"id"`
	ListingID  int64     `json:"listing_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Timestamp  string    `json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: rating %d out of range", ErrInvalidReview, r.Rating)
	}
	return nil
}
