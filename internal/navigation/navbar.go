package navigation

type NavItem struct {
	Screen Screen `json:"screen"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

var (
	consumerItems = []NavItem{{Screen: Home, Label: "Home"}, {Screen: Favorites, Label: "Favorites"}, {Screen: Messages, Label: "Messages"}, {Screen: Profile, Label: "Profile"}}
	providerItems = []NavItem{{Screen: Dashboard, Label: "Dashboard"}, {Screen: ManageListings, Label: "Listings"}, {Screen: Messages, Label: "Messages"}, {Screen: Profile, Label: "Profile"}}
)

// NavItems returns the shortcuts for a role with the current screen marked.
func NavItems(r Role, current Screen) []NavItem {
	var src []NavItem
	switch r.Kind() {
	case KindConsumer:
		src = consumerItems
	case KindProvider:
		src = providerItems
	default:
		return nil
	}
	out := make([]NavItem, len(src))
	for i, it := range src {
		it.Active = it.Screen == current
		out[i] = it
	}
	return out
}

// ShowNavBar reports whether the bar is visible on the current screen.
func ShowNavBar(r Role, authenticated bool, current Screen) bool {
	if !authenticated {
		return false
	}
	for _, it := range NavItems(r, current) {
		if it.Screen == current {
			return true
		}
	}
	return false
}
