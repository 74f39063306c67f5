// Package catalog defines the two app variants (general classifieds and
// property rentals) as data: roles, category taxonomy, browse buckets and
// fixture content.
package catalog

import (
	"fmt"
	"strings"

	"marketpaline/internal/domain"
	"marketpaline/internal/navigation"
)

const (
	General  = "general"
	Property = "property"
)

// BucketAll matches every category.
const BucketAll = "all"

// Bucket is a browse filter chip. A chip may stand for several underlying
// categories ("for sale" covers every *_sale category of the variant).
type Bucket struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Categories []domain.Category `json:"categories,omitempty"`
}

func (b Bucket) All() bool { return b.ID == BucketAll || b.ID == "" }

func (b Bucket) Matches(c domain.Category) bool {
	if b.All() {
		return true
	}
	for _, x := range b.Categories {
		if x == c {
			return true
		}
	}
	return false
}

type Variant struct {
	Name       string            `json:"name"`
	Brand      string            `json:"brand"`
	Tagline    string            `json:"tagline"`
	Roles      []navigation.Role `json:"roles"`
	Categories []domain.Category `json:"categories"`
	Buckets    []Bucket          `json:"buckets"`
	// Viewable categories offer "schedule viewing"; amenity categories list amenities.
	Viewable  []domain.Category `json:"viewable"`
	Amenities []domain.Category `json:"amenities"`
}

var variants = map[string]Variant{
	General: {
		Name:    General,
		Brand:   "MarketPaLine",
		Tagline: "Buy, sell, and rent anything in Malawi.",
		Roles:   []navigation.Role{navigation.RoleBuyer, navigation.RoleSeller},
		Categories: []domain.Category{
			domain.CategoryHouseRental, domain.CategoryBedroomRental, domain.CategoryEventVenueHire,
			domain.CategoryCarHire, domain.CategoryEquipmentHire, domain.CategoryLandSale,
			domain.CategoryHouseSale, domain.CategoryCarSale, domain.CategoryElectronicsSale,
		},
		Buckets: []Bucket{
			{ID: BucketAll, Label: "All"},
			{ID: "house_rental", Label: "Houses", Categories: []domain.Category{domain.CategoryHouseRental}},
			{ID: "for_sale", Label: "For Sale", Categories: []domain.Category{
				domain.CategoryLandSale, domain.CategoryHouseSale, domain.CategoryCarSale, domain.CategoryElectronicsSale,
			}},
			{ID: "car", Label: "Cars", Categories: []domain.Category{domain.CategoryCarHire, domain.CategoryCarSale}},
			{ID: "event_venue_hire", Label: "Venues", Categories: []domain.Category{domain.CategoryEventVenueHire}},
			{ID: "equipment_hire", Label: "Equipment", Categories: []domain.Category{domain.CategoryEquipmentHire}},
		},
		Viewable:  []domain.Category{domain.CategoryHouseRental, domain.CategoryBedroomRental, domain.CategoryEventVenueHire},
		Amenities: []domain.Category{domain.CategoryHouseRental, domain.CategoryHouseSale, domain.CategoryEventVenueHire},
	},
	Property: {
		Name:       Property,
		Brand:      "MarketPaLine Homes",
		Tagline:    "Find your next home in Malawi.",
		Roles:      []navigation.Role{navigation.RoleTenant, navigation.RoleLandlord, navigation.RoleAgent},
		Categories: []domain.Category{domain.CategoryHouseRental, domain.CategoryBedroomRental, domain.CategoryHouseSale, domain.CategoryLandSale},
		Buckets: []Bucket{
			{ID: BucketAll, Label: "All"},
			{ID: "house_rental", Label: "Houses", Categories: []domain.Category{domain.CategoryHouseRental}},
			{ID: "bedroom_rental", Label: "Rooms", Categories: []domain.Category{domain.CategoryBedroomRental}},
			{ID: "for_sale", Label: "For Sale", Categories: []domain.Category{domain.CategoryHouseSale, domain.CategoryLandSale}},
		},
		Viewable:  []domain.Category{domain.CategoryHouseRental, domain.CategoryBedroomRental, domain.CategoryHouseSale, domain.CategoryLandSale},
		Amenities: []domain.Category{domain.CategoryHouseRental, domain.CategoryBedroomRental, domain.CategoryHouseSale},
	},
}

// Lookup returns a variant by name.
func Lookup(name string) (Variant, error) {
	v, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", domain.ErrUnknownVariant, name)
	}
	return v, nil
}

func Names() []string { return []string{General, Property} }

func (v Variant) HasRole(r navigation.Role) bool {
	for _, x := range v.Roles {
		if x == r {
			return true
		}
	}
	return false
}

func (v Variant) HasCategory(c domain.Category) bool { return contains(v.Categories, c) }

// Bucket resolves a chip id. Empty and unknown ids fall back to "all".
func (v Variant) Bucket(id string) (Bucket, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, b := range v.Buckets {
		if b.ID == id {
			return b, true
		}
	}
	return v.Buckets[0], id == ""
}

func (v Variant) IsViewable(c domain.Category) bool    { return contains(v.Viewable, c) }
func (v Variant) ShowAmenities(c domain.Category) bool { return contains(v.Amenities, c) }

func contains(cs []domain.Category, c domain.Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
