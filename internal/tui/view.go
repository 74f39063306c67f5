package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"marketpaline/internal/catalog"
	"marketpaline/internal/domain"
	"marketpaline/internal/gesture"
	"marketpaline/internal/messaging"
	"marketpaline/internal/navigation"
)

func (m *Model) View() string {
	var body string
	switch m.st.Route().Screen() {
	case navigation.Splash:
		body = m.viewSplash()
	case navigation.Login:
		body = titleStyle.Render("Log in") + "\n\n" + mutedStyle.Render("enter: continue")
	case navigation.RoleSelection:
		body = m.viewRoles()
	case navigation.Home:
		body = m.viewHome()
	case navigation.ListingDetails:
		body = m.viewDetails()
	case navigation.Favorites:
		body = m.viewFavorites()
	case navigation.Messages:
		body = m.viewMessages()
	case navigation.Notifications:
		body = m.viewNotifications()
	case navigation.Dashboard:
		body = titleStyle.Render("Dashboard") + "\n\n" + mutedStyle.Render("a: add listing  L: log out")
	case navigation.ManageListings:
		body = m.viewManage()
	case navigation.AddListing:
		body = m.viewForm()
	default:
		body = titleStyle.Render(screenTitle(m.st.Screen)) + "\n\n" + mutedStyle.Render("esc: back  L: log in/out  n: notifications")
	}

	var b strings.Builder
	b.WriteString(body)
	if m.mode != modeNone {
		b.WriteString("\n\n" + m.input.View())
	}
	if m.status != "" {
		st := mutedStyle
		if m.statusErr {
			st = errorStyle
		}
		b.WriteString("\n\n" + st.Render(m.status))
	}
	if nav := m.viewNav(); nav != "" {
		b.WriteString("\n" + nav)
	}
	return b.String()
}

func screenTitle(s navigation.Screen) string {
	words := strings.Split(s.String(), "_")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (m *Model) viewSplash() string {
	return lipgloss.JoinVertical(lipgloss.Center,
		brandStyle.Render(m.variant.Brand),
		mutedStyle.Render(m.variant.Tagline),
		"",
		m.spinner.View(),
	)
}

func (m *Model) viewRoles() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("How will you use "+m.variant.Brand+"?") + "\n\n")
	for i, r := range m.variant.Roles {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, strings.ToUpper(string(r)[:1])+string(r)[1:])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) viewHome() string {
	var b strings.Builder
	b.WriteString(brandStyle.Render(m.variant.Brand) + "\n")
	b.WriteString(m.viewPull() + "\n")
	b.WriteString(m.viewChips() + "\n")
	q := m.browser.Query()
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render(fmt.Sprintf("sort: %s  search: %q", q.Sort, q.Search)))

	res := m.browser.Result()
	if res.Empty() {
		b.WriteString(mutedStyle.Render("No listings match your search."))
		return b.String()
	}
	for i, l := range res.Items {
		b.WriteString(m.listingRow(l, i == m.cursor) + "\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d listings  /: search  tab: category  s: sort  r: refresh", res.Count)))
	return b.String()
}

func (m *Model) viewPull() string {
	switch m.puller.Phase() {
	case gesture.Refreshing:
		return m.spinner.View() + " Refreshing..."
	case gesture.Pulling:
		if m.puller.Armed() {
			return accentStyle.Render("Release to refresh")
		}
		return mutedStyle.Render(fmt.Sprintf("Pull to refresh %3.0f%%", m.puller.Progress()*100))
	}
	return ""
}

func (m *Model) viewChips() string {
	cur := m.browser.Query().Bucket.ID
	chips := make([]string, 0, len(m.variant.Buckets))
	for _, bk := range m.variant.Buckets {
		if bk.ID == cur || (cur == "" && bk.ID == catalog.BucketAll) {
			chips = append(chips, chipOnStyle.Render(bk.Label))
		} else {
			chips = append(chips, chipStyle.Render(bk.Label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m *Model) listingRow(l domain.Listing, selected bool) string {
	marker := "  "
	st := titleStyle
	if selected {
		marker = "> "
		st = selectedStyle
	}
	fav := ""
	if m.st.IsFavorite(l.ID) {
		fav = accentStyle.Render(" ♥")
	}
	return fmt.Sprintf("%s%s%s  %s  %s", marker, st.Render(l.Title), fav,
		mutedStyle.Render(l.Location), accentStyle.Render(l.FormattedPrice()))
}

func (m *Model) viewDetails() string {
	l := m.st.Selected
	var b strings.Builder
	b.WriteString(titleStyle.Render(l.Title) + "\n")
	fmt.Fprintf(&b, "%s  %s  %s\n", accentStyle.Render(l.FormattedPrice()), mutedStyle.Render(l.Location), mutedStyle.Render(string(l.Status)))
	if m.gallery != nil && m.gallery.Len() > 0 {
		fmt.Fprintf(&b, "image %d/%d  %s\n", m.gallery.Index()+1, m.gallery.Len(), mutedStyle.Render(m.gallery.Current()))
	}
	if l.Description != "" {
		b.WriteString("\n" + l.Description + "\n")
	}
	if m.variant.ShowAmenities(l.Category) && l.Bedrooms != nil {
		baths := 0
		if l.Bathrooms != nil {
			baths = *l.Bathrooms
		}
		fmt.Fprintf(&b, "%d bedrooms  %d bathrooms\n", *l.Bedrooms, baths)
	}
	fmt.Fprintf(&b, "\nSeller: %s\n", l.SellerName)

	fmt.Fprintf(&b, "\nReviews (%.1f)\n", l.AverageRating())
	if len(l.Reviews) == 0 {
		b.WriteString(mutedStyle.Render("No reviews yet.") + "\n")
	}
	for _, r := range l.Reviews {
		b.WriteString(cardStyle.Render(fmt.Sprintf("%s %s  %s\n%s", strings.Repeat("★", r.Rating), r.AuthorName, mutedStyle.Render(r.Timestamp), r.Comment)) + "\n")
	}
	keys := "←/→: photos  f: favorite  w: review  i: inquire  c: contact  S: share  esc: back"
	if m.mode == modeReview {
		keys = fmt.Sprintf("rating: %d/5", m.rating)
	}
	b.WriteString(mutedStyle.Render(keys))
	return b.String()
}

func (m *Model) viewFavorites() string {
	ls := m.favorites()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Favorites") + "\n\n")
	if len(ls) == 0 {
		b.WriteString(mutedStyle.Render("No favorites yet."))
		return b.String()
	}
	for i, l := range ls {
		b.WriteString(m.listingRow(l, i == m.cursor) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) viewMessages() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(messaging.ContactName(m.st.Selected)) + "\n\n")
	for _, msg := range m.thread.Messages() {
		line := fmt.Sprintf("%s  %s", msg.Text, mutedStyle.Render(msg.Timestamp))
		if msg.Sender == domain.SenderMe {
			b.WriteString(lipgloss.PlaceHorizontal(max(m.width, 60), lipgloss.Right, accentStyle.Render(line)) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(mutedStyle.Render("enter: write  esc: back"))
	return b.String()
}

func (m *Model) viewNotifications() string {
	fx, err := catalog.LoadFixtures(m.variant.Name)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Notifications") + "\n\n")
	for _, n := range fx.Notifications {
		b.WriteString(cardStyle.Render(titleStyle.Render(n.Title)+"\n"+n.Body+"\n"+mutedStyle.Render(n.Timestamp)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) viewManage() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("My Listings") + "\n\n")
	for i, l := range m.ownListings() {
		b.WriteString(m.listingRow(l, i == m.cursor) + "\n")
	}
	b.WriteString(mutedStyle.Render("a: add  e: edit  j/k: move"))
	return b.String()
}

func (m *Model) viewForm() string {
	title := "Add Listing"
	if m.st.Editing != nil {
		title = "Edit Listing: " + m.st.Editing.Title
	}
	return titleStyle.Render(title) + "\n\n" + mutedStyle.Render("enter: save  esc: cancel")
}

func (m *Model) viewNav() string {
	items := m.st.NavItems()
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, len(items))
	for i, it := range items {
		label := fmt.Sprintf("%d %s", i+1, it.Label)
		if it.Active {
			parts[i] = chipOnStyle.Render(label)
		} else {
			parts[i] = chipStyle.Render(label)
		}
	}
	return navStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}
