package catalog

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"marketpaline/internal/domain"
)

//go:embed fixtures/*.toml
var fixtureFS embed.FS

// Fixtures is the static content of a variant: the stand-in for a data service.
type Fixtures struct {
	Listings      []domain.Listing
	Conversations []domain.Conversation
	Messages      []domain.Message
	Notifications []domain.Notification
}

type fixtureFile struct {
	Listings      []fixtureListing      `toml:"listing"`
	Conversations []fixtureConversation `toml:"conversation"`
	Messages      []fixtureMessage      `toml:"message"`
	Notifications []fixtureNotification `toml:"notification"`
}

type fixtureListing struct {
	ID          int64           `toml:"id"`
	Title       string          `toml:"title"`
	Price       int64           `toml:"price"`
	PriceType   string          `toml:"price_type"`
	Location    string          `toml:"location"`
	ImageURL    string          `toml:"image_url"`
	Images      []string        `toml:"images"`
	Description string          `toml:"description"`
	Status      string          `toml:"status"`
	SellerID    int64           `toml:"seller_id"`
	SellerName  string          `toml:"seller_name"`
	Category    string          `toml:"category"`
	Bedrooms    *int            `toml:"bedrooms"`
	Bathrooms   *int            `toml:"bathrooms"`
	PhoneNumber *string         `toml:"phone_number"`
	Email       *string         `toml:"email"`
	Reviews     []fixtureReview `toml:"review"`
}

type fixtureReview struct {
	ID         int64  `toml:"id"`
	AuthorName string `toml:"author_name"`
	Rating     int    `toml:"rating"`
	Comment    string `toml:"comment"`
	Timestamp  string `toml:"timestamp"`
}

type fixtureConversation struct {
	ID          int64  `toml:"id"`
	Name        string `toml:"name"`
	LastMessage string `toml:"last_message"`
	AvatarURL   string `toml:"avatar_url"`
}

type fixtureMessage struct {
	ID        int    `toml:"id"`
	Sender    string `toml:"sender"`
	Text      string `toml:"text"`
	Timestamp string `toml:"timestamp"`
}

type fixtureNotification struct {
	ID        int64  `toml:"id"`
	Title     string `toml:"title"`
	Body      string `toml:"body"`
	Timestamp string `toml:"timestamp"`
}

// LoadFixtures decodes and validates the embedded fixtures of a variant.
func LoadFixtures(variant string) (Fixtures, error) {
	v, err := Lookup(variant)
	if err != nil {
		return Fixtures{}, err
	}
	raw, err := fixtureFS.ReadFile("fixtures/" + v.Name + ".toml")
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures %s: %w", v.Name, err)
	}
	var ff fixtureFile
	if _, err := toml.Decode(string(raw), &ff); err != nil {
		return Fixtures{}, fmt.Errorf("decode fixtures %s: %w", v.Name, err)
	}

	out := Fixtures{}
	for _, fl := range ff.Listings {
		l := fl.toDomain(v.Name)
		if err := l.Validate(); err != nil {
			return Fixtures{}, fmt.Errorf("fixture listing %d: %w", fl.ID, err)
		}
		if !v.HasCategory(l.Category) {
			return Fixtures{}, fmt.Errorf("fixture listing %d: %w: category %q not in variant %s",
				fl.ID, domain.ErrInvalidListing, l.Category, v.Name)
		}
		out.Listings = append(out.Listings, l)
	}
	for _, c := range ff.Conversations {
		out.Conversations = append(out.Conversations, domain.Conversation{
			ID: c.ID, Name: c.Name, LastMessage: c.LastMessage, AvatarURL: c.AvatarURL,
		})
	}
	for _, m := range ff.Messages {
		out.Messages = append(out.Messages, domain.Message{
			ID: m.ID, Sender: domain.Sender(m.Sender), Text: m.Text, Timestamp: m.Timestamp,
		})
	}
	for _, n := range ff.Notifications {
		out.Notifications = append(out.Notifications, domain.Notification{
			ID: n.ID, Title: n.Title, Body: n.Body, Timestamp: n.Timestamp,
		})
	}
	return out, nil
}

func (fl fixtureListing) toDomain(variant string) domain.Listing {
	l := domain.Listing{
		ID:          fl.ID,
		Variant:     variant,
		Title:       fl.Title,
		Price:       fl.Price,
		PriceType:   domain.PriceType(fl.PriceType),
		Location:    fl.Location,
		ImageURL:    fl.ImageURL,
		Images:      fl.Images,
		Description: fl.Description,
		Status:      domain.Status(fl.Status),
		SellerID:    fl.SellerID,
		SellerName:  fl.SellerName,
		Category:    domain.Category(fl.Category),
		Bedrooms:    fl.Bedrooms,
		Bathrooms:   fl.Bathrooms,
		PhoneNumber: fl.PhoneNumber,
		Email:       fl.Email,
	}
	for _, r := range fl.Reviews {
		l.Reviews = append(l.Reviews, domain.Review{
			ID: r.ID, ListingID: fl.ID, AuthorName: r.AuthorName, Rating: r.Rating,
			Comment: r.Comment, Timestamp: r.Timestamp,
		})
	}
	return l
}
