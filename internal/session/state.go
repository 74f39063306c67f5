// Package session is the navigation state container of one client: the
// current screen, role, authentication flag and the listing payloads the
// screens need. All transitions are named commands on State.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	"marketpaline/internal/navigation"
)

type State struct {
	ID                uuid.UUID          `json:"id"`
	Variant           string             `json:"variant"`
	Screen            navigation.Screen  `json:"screen"`
	Role              navigation.Role    `json:"role"`
	Authenticated     bool               `json:"authenticated"`
	Selected          *domain.Listing    `json:"selected,omitempty"`
	PostLoginRedirect *navigation.Screen `json:"post_login_redirect,omitempty"`
	Editing           *domain.Listing    `json:"editing,omitempty"`
	Favorites         []int64            `json:"favorites"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// New returns a session on the splash screen with no role.
func New(variant string, now time.Time) (*State, error) {
	v, err := catalog.Lookup(variant)
	if err != nil {
		return nil, err
	}
	return &State{
		ID:        uuid.New(),
		Variant:   v.Name,
		Screen:    navigation.Splash,
		Role:      navigation.RoleNone,
		Favorites: []int64{},
		UpdatedAt: now,
	}, nil
}

// Clone deep-copies the state so stores never share pointers with callers.
func (s *State) Clone() *State {
	out := *s
	if s.Selected != nil {
		l := s.Selected.Clone()
		out.Selected = &l
	}
	if s.Editing != nil {
		l := s.Editing.Clone()
		out.Editing = &l
	}
	if s.PostLoginRedirect != nil {
		r := *s.PostLoginRedirect
		out.PostLoginRedirect = &r
	}
	out.Favorites = append([]int64{}, s.Favorites...)
	return &out
}

// NavigateTo moves to a screen. Details without a selection lands on home,
// and the stored screen says so.
func (s *State) NavigateTo(to navigation.Screen) {
	s.Screen = navigation.Resolve(to)
	s.settle()
}

// settle rewrites a details screen that has nothing to show.
func (s *State) settle() {
	if s.Screen == navigation.ListingDetails && s.Selected == nil {
		s.Screen = navigation.Home
	}
}

// SetRole assigns a role of the session's variant. RoleNone is always accepted.
func (s *State) SetRole(r navigation.Role) error {
	if r == navigation.RoleNone {
		s.Role = r
		return nil
	}
	v, err := catalog.Lookup(s.Variant)
	if err != nil {
		return err
	}
	if !v.HasRole(r) {
		return fmt.Errorf("%w: role %q not offered by %s", domain.ErrInvalidInput, r, v.Name)
	}
	s.Role = r
	return nil
}

func (s *State) SetAuthenticated(ok bool) { s.Authenticated = ok }

func (s *State) SelectListing(l *domain.Listing) {
	s.Selected = cloneListing(l)
	s.settle()
}

func (s *State) SetEditTarget(l *domain.Listing) { s.Editing = cloneListing(l) }

func (s *State) SetPostLoginRedirect(to *navigation.Screen) {
	if to == nil {
		s.PostLoginRedirect = nil
		return
	}
	r := navigation.Resolve(*to)
	s.PostLoginRedirect = &r
}

// Login marks the session authenticated and lands on the role's home.
// Without a role the user is sent to role selection first.
func (s *State) Login() {
	s.Authenticated = true
	s.Screen = navigation.HomeFor(s.Role)
}

// ChooseRole assigns the role and routes to its landing screen. Consumers
// resume the pending post-login redirect when one is set. The redirect is
// cleared either way.
func (s *State) ChooseRole(r navigation.Role) error {
	if r == navigation.RoleNone {
		return fmt.Errorf("%w: a role is required", domain.ErrInvalidInput)
	}
	if err := s.SetRole(r); err != nil {
		return err
	}
	redirect := s.PostLoginRedirect
	s.PostLoginRedirect = nil
	if r.Kind() == navigation.KindConsumer && redirect != nil {
		s.Screen = *redirect
		s.settle()
		return nil
	}
	s.Screen = navigation.HomeFor(r)
	return nil
}

func (s *State) Logout() {
	s.Role = navigation.RoleNone
	s.Authenticated = false
	s.Screen = navigation.Home
}

// RequireLogin defers a gated action: the user returns to the details
// screen after picking a role.
func (s *State) RequireLogin() {
	r := navigation.ListingDetails
	s.PostLoginRedirect = &r
	s.Screen = navigation.Login
}

func (s *State) OpenListing(l domain.Listing) {
	s.Selected = cloneListing(&l)
	s.Screen = navigation.ListingDetails
}

// StartEdit opens the listing form, pre-populated when l is non-nil.
func (s *State) StartEdit(l *domain.Listing) {
	s.Editing = cloneListing(l)
	s.Screen = navigation.AddListing
}

// ExitForm leaves the listing form. Edits and successful submissions land on
// the listings manager, cancelled creates go back to the dashboard.
func (s *State) ExitForm(submitted bool) {
	if s.Editing != nil || submitted {
		s.Screen = navigation.ManageListings
	} else {
		s.Screen = navigation.Dashboard
	}
	s.Editing = nil
}

// Back follows the hardcoded back target of the current screen. It reports
// false when the screen has none.
func (s *State) Back() bool {
	if s.Screen == navigation.AddListing {
		s.ExitForm(false)
		return true
	}
	to, ok := navigation.BackTarget(s.Screen, s.Selected != nil, s.Editing != nil)
	if !ok {
		return false
	}
	s.Screen = to
	return true
}

func (s *State) SplashElapsed() {
	if s.Screen == navigation.Splash {
		s.Screen = navigation.Home
	}
}

// ReplaceSelected swaps the selected snapshot when it shows the same listing.
func (s *State) ReplaceSelected(l domain.Listing) {
	if s.Selected != nil && s.Selected.ID == l.ID {
		s.Selected = cloneListing(&l)
	}
}

// ToggleFavorite flips a listing in the favorites set and reports whether it
// is now a favorite.
func (s *State) ToggleFavorite(id int64) bool {
	for i, f := range s.Favorites {
		if f == id {
			s.Favorites = append(s.Favorites[:i:i], s.Favorites[i+1:]...)
			return false
		}
	}
	s.Favorites = append(s.Favorites, id)
	return true
}

func (s *State) IsFavorite(id int64) bool {
	for _, f := range s.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// Route is the typed view of the current screen. Details without a
// selection resolves to home.
func (s *State) Route() navigation.Route {
	switch s.Screen {
	case navigation.ListingDetails:
		if s.Selected == nil {
			return navigation.Static{To: navigation.Home}
		}
		return navigation.Details{Listing: s.Selected.Clone()}
	case navigation.AddListing:
		return navigation.ListingForm{Editing: cloneListing(s.Editing)}
	case navigation.Messages:
		return navigation.Conversation{With: cloneListing(s.Selected)}
	}
	return navigation.Static{To: s.Screen}
}

// NavItems follows the resolved route, so a redirected screen gets the bar of
// the screen actually shown.
func (s *State) NavItems() []navigation.NavItem {
	at := s.Route().Screen()
	if !navigation.ShowNavBar(s.Role, s.Authenticated, at) {
		return nil
	}
	return navigation.NavItems(s.Role, at)
}

func cloneListing(l *domain.Listing) *domain.Listing {
	if l == nil {
		return nil
	}
	c := l.Clone()
	return &c
}
