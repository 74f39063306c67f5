package navigation

import "marketpaline/internal/domain"

// Route is the typed destination a renderer dispatches on. Each variant
// carries exactly what its screen needs.
type Route interface {
	Screen() Screen
	isRoute()
}

// Static is any screen without a payload.
type Static struct{ To Screen }

// Details always carries the listing it shows.
type Details struct{ Listing domain.Listing }

// ListingForm creates a listing when Editing is nil and edits it otherwise.
type ListingForm struct{ Editing *domain.Listing }

// Conversation is the messages screen; With is the listing whose seller is
// being contacted, if any.
type Conversation struct{ With *domain.Listing }

func (r Static) Screen() Screen     { return Resolve(r.To) }
func (Details) Screen() Screen      { return ListingDetails }
func (ListingForm) Screen() Screen  { return AddListing }
func (Conversation) Screen() Screen { return Messages }
func (Static) isRoute()             {}
func (Details) isRoute()            {}
func (ListingForm) isRoute()        {}
func (Conversation) isRoute()       {}
