// Package navigation holds the closed sets a session navigates over: screens,
// roles, typed routes and the bottom navigation bar.
package navigation

import (
	"encoding/json"
	"strings"
)

type Screen int

const (
	Splash Screen = iota
	Login
	RoleSelection
	Home
	ListingDetails
	Favorites
	Messages
	Profile
	Dashboard
	AddListing
	ManageListings
	Notifications
	RulesAndPolicies
	Settings
	EditProfile
	About
)

var screenNames = [...]string{
	Splash:           "splash",
	Login:            "login",
	RoleSelection:    "role_selection",
	Home:             "home",
	ListingDetails:   "listing_details",
	Favorites:        "favorites",
	Messages:         "messages",
	Profile:          "profile",
	Dashboard:        "dashboard",
	AddListing:       "add_listing",
	ManageListings:   "manage_listings",
	Notifications:    "notifications",
	RulesAndPolicies: "rules_and_policies",
	Settings:         "settings",
	EditProfile:      "edit_profile",
	About:            "about",
}

// DefaultScreen is where unknown screens and broken transitions land.
const DefaultScreen = Home

func (s Screen) Valid() bool { return s >= Splash && int(s) < len(screenNames) }

func (s Screen) String() string {
	if !s.Valid() {
		return screenNames[DefaultScreen]
	}
	return screenNames[s]
}

// ParseScreen maps a wire name to a Screen. Unknown names resolve to the
// default screen and ok=false.
func ParseScreen(name string) (Screen, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range screenNames {
		if s == n {
			return Screen(i), true
		}
	}
	return DefaultScreen, false
}

// Resolve clamps an arbitrary value to a recognised screen.
func Resolve(s Screen) Screen {
	if !s.Valid() {
		return DefaultScreen
	}
	return s
}

func (s Screen) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Screen) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	*s, _ = ParseScreen(name)
	return nil
}

// BackTarget is the hardcoded "back" destination of a screen. There is no
// history stack; ok=false means the screen has no back affordance.
func BackTarget(from Screen, hasSelection, editing bool) (Screen, bool) {
	switch from {
	case ListingDetails, Notifications:
		return Home, true
	case Messages:
		if hasSelection {
			return ListingDetails, true
		}
		return Home, true
	case AddListing:
		if editing {
			return ManageListings, true
		}
		return Dashboard, true
	case RulesAndPolicies, Settings, About, EditProfile:
		return Profile, true
	}
	return from, false
}
