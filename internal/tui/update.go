package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"marketpaline/internal/catalog"
	"marketpaline/internal/details"
	"marketpaline/internal/domain"
	"marketpaline/internal/messaging"
	"marketpaline/internal/navigation"
	"marketpaline/internal/query"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case splashDoneMsg:
		m.st.SplashElapsed()
		return m, nil
	case refreshDoneMsg:
		m.browser.Refresh(m.opts.Shuffle)
		m.puller.Complete()
		m.cursor = 0
		m.setStatus("Listings refreshed.", false)
		return m, nil
	case replyMsg:
		m.thread.Reply(messaging.AutoReply, m.opts.Now())
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeNone {
			return m, m.handleInput(msg)
		}
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// handleMouse maps a left-button drag onto the pull gesture on home and onto
// a gallery swipe on the details screen.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if tea.MouseEvent(msg).IsWheel() {
		return nil
	}
	switch m.st.Screen {
	case navigation.Home:
		switch msg.Action {
		case tea.MouseActionPress:
			m.puller.TouchStart(float64(m.cursor)*rowPx, float64(msg.Y)*rowPx)
		case tea.MouseActionMotion:
			m.puller.TouchMove(float64(msg.Y) * rowPx)
		case tea.MouseActionRelease:
			if m.puller.TouchEnd() {
				return m.refreshCmd()
			}
		}
	case navigation.ListingDetails:
		switch msg.Action {
		case tea.MouseActionPress:
			m.swipe.Start(float64(msg.X) * rowPx / 2)
		case tea.MouseActionRelease:
			if m.gallery != nil {
				m.gallery.Swipe(m.swipe.End(float64(msg.X) * rowPx / 2))
			}
		}
	}
	return nil
}

func (m *Model) refreshCmd() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.Tick(m.puller.Config().Delay, func(time.Time) tea.Msg { return refreshDoneMsg{} }))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "q" {
		return tea.Quit
	}
	if key == "esc" || key == "backspace" {
		if !m.st.Back() {
			m.setStatus("", false)
		}
		return nil
	}

	switch m.st.Screen {
	case navigation.Splash:
		m.st.SplashElapsed()
		return nil
	case navigation.Home:
		return m.homeKey(key)
	case navigation.ListingDetails:
		return m.detailsKey(key)
	case navigation.Login:
		if key == "enter" {
			m.st.Login()
		}
		return nil
	case navigation.RoleSelection:
		return m.roleKey(key)
	case navigation.Messages:
		if key == "enter" || key == "i" {
			m.startInput(modeMessage, "Type a message")
			return nil
		}
	case navigation.Favorites:
		if key == "enter" {
			if ls := m.favorites(); m.cursor < len(ls) {
				m.openListing(ls[m.cursor])
			}
			return nil
		}
		if m.moveCursor(key, len(m.st.Favorites)) {
			return nil
		}
	}
	m.navKey(key)
	return nil
}

func (m *Model) homeKey(key string) tea.Cmd {
	res := m.browser.Result()
	switch key {
	case "enter":
		if m.cursor < len(res.Items) {
			m.openListing(res.Items[m.cursor])
		}
	case "/":
		m.startInput(modeSearch, "Search title, location or price")
		m.input.SetValue(m.browser.Query().Search)
	case "tab":
		m.browser.SelectBucket(nextBucket(m.variant.Buckets, m.browser.Query().Bucket.ID))
		m.cursor = 0
	case "s":
		m.browser.SetSort(nextSort(m.browser.Query().Sort))
	case "r":
		// keyboard stand-in for a full pull
		if !m.puller.Refreshing() {
			m.puller.TouchStart(0, 0)
			m.puller.TouchMove(m.puller.Config().Threshold / m.puller.Config().Resistance)
			if m.puller.TouchEnd() {
				return m.refreshCmd()
			}
		}
	default:
		if !m.moveCursor(key, len(res.Items)) {
			m.navKey(key)
		}
	}
	return nil
}

func (m *Model) detailsKey(key string) tea.Cmd {
	l := m.st.Selected
	if l == nil {
		m.st.NavigateTo(navigation.Home)
		return nil
	}
	if m.gallery == nil {
		m.gallery = details.NewGallery(*l)
	}
	switch key {
	case "right", "l":
		m.gallery.Next()
	case "left", "h":
		m.gallery.Prev()
	case "S":
		res := details.Share(m.ctx, nil, details.SharePayload(*l, m.opts.ShareBaseURL))
		m.setStatus(res.Fallback, false)
	case "f":
		if m.gate(details.ActionFavorite) {
			if m.st.ToggleFavorite(l.ID) {
				m.setStatus("Added to favorites.", false)
			} else {
				m.setStatus("Removed from favorites.", false)
			}
		}
	case "w":
		if m.gate(details.ActionReview) {
			m.rating = 0
			m.startInput(modeReview, "Press 1-5 to rate, then write your review")
		}
	case "i":
		if m.gate(details.ActionInquire) {
			m.startInput(modeInquiry, "")
			m.input.SetValue(details.InquiryTemplate(*l))
		}
	case "c":
		if m.gate(details.ActionContact) {
			m.st.NavigateTo(navigation.Messages)
		}
	}
	return nil
}

func (m *Model) roleKey(key string) tea.Cmd {
	if len(key) != 1 || key[0] < '1' || int(key[0]-'1') >= len(m.variant.Roles) {
		return nil
	}
	i := int(key[0] - '1')
	if err := m.st.ChooseRole(m.variant.Roles[i]); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}
	m.cursor = 0
	m.setStatus("", false)
	return nil
}

// navKey handles the bottom bar shortcuts and the profile pages.
func (m *Model) navKey(key string) {
	items := m.st.NavItems()
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(items) {
			m.st.NavigateTo(items[i].Screen)
			m.cursor = 0
		}
		return
	}
	switch key {
	case "L":
		if m.st.Authenticated {
			m.st.Logout()
		} else {
			m.st.NavigateTo(navigation.Login)
		}
	case "n":
		m.st.NavigateTo(navigation.Notifications)
	case "a":
		if m.st.Screen == navigation.Dashboard || m.st.Screen == navigation.ManageListings {
			m.st.StartEdit(nil)
		}
	case "e":
		if m.st.Screen == navigation.ManageListings {
			if ls := m.ownListings(); m.cursor < len(ls) {
				m.st.StartEdit(&ls[m.cursor])
			}
		}
	case "enter":
		if m.st.Screen == navigation.AddListing {
			m.st.ExitForm(true)
			m.setStatus("Listing saved.", false)
		}
	}
}

func (m *Model) moveCursor(key string, n int) bool {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	default:
		return false
	}
	return true
}

// gate reports whether the action may run; otherwise the session is sent to
// login and will come back to the details screen.
func (m *Model) gate(a details.Action) bool {
	if details.Gate(m.st.Authenticated, a) == details.LoginRequired {
		m.st.RequireLogin()
		m.setStatus("Please log in to continue.", false)
		return false
	}
	return true
}

func (m *Model) openListing(l domain.Listing) {
	m.st.OpenListing(l)
	m.gallery = details.NewGallery(l)
	m.setStatus("", false)
}

func (m *Model) startInput(mode inputMode, placeholder string) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) handleInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if m.mode == modeSearch {
			m.browser.SetSearch("")
		}
		m.stopInput()
		return nil
	case "enter":
		return m.submitInput()
	}
	if m.mode == modeReview && m.input.Value() == "" {
		if k := msg.String(); len(k) == 1 && k[0] >= '1' && k[0] <= '5' {
			m.rating = int(k[0] - '0')
			return nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeSearch {
		m.browser.SetSearch(m.input.Value())
		m.cursor = 0
	}
	return cmd
}

func (m *Model) submitInput() tea.Cmd {
	text := m.input.Value()
	mode := m.mode
	switch mode {
	case modeSearch:
		m.browser.SetSearch(text)
		m.stopInput()
	case modeReview:
		if err := m.submitReview(text); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.stopInput()
		m.setStatus("Thanks for your review!", false)
	case modeInquiry:
		inq, err := details.NewInquiry(*m.st.Selected, text)
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		log.Info().Int64("listing", inq.ListingID).Msg("inquiry sent")
		m.stopInput()
		m.setStatus("Inquiry sent to "+m.st.Selected.SellerName+".", false)
	case modeMessage:
		if _, ok := m.thread.Send(text, m.opts.Now()); !ok {
			return nil
		}
		m.stopInput()
		return tea.Tick(m.opts.ReplyDelay, func(time.Time) tea.Msg { return replyMsg{} })
	}
	return nil
}

func (m *Model) submitReview(comment string) error {
	l := *m.st.Selected
	r, err := details.NewReview(l.ID, m.rating, comment, "", m.opts.Now())
	if err != nil {
		return err
	}
	saved, err := m.opts.Repo.AddReview(m.ctx, r)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	m.st.ReplaceSelected(details.PrependReview(l, saved))
	return nil
}

func (m *Model) favorites() []domain.Listing {
	var out []domain.Listing
	for _, id := range m.st.Favorites {
		if l, err := m.opts.Repo.GetListing(m.ctx, id); err == nil {
			out = append(out, l)
		}
	}
	return out
}

// ownListings is what the provider manages; the demo seller owns seller 1's listings.
func (m *Model) ownListings() []domain.Listing {
	seller := int64(1)
	ls, err := m.opts.Repo.ListListings(m.ctx, domain.ListingsQuery{Variant: m.variant.Name, SellerID: &seller})
	if err != nil {
		log.Warn().Err(err).Msg("list own listings")
		return nil
	}
	return ls
}

func nextBucket(bs []catalog.Bucket, cur string) string {
	for i, b := range bs {
		if b.ID == cur {
			return bs[(i+1)%len(bs)].ID
		}
	}
	return bs[0].ID
}

func nextSort(s query.SortOption) query.SortOption {
	switch s {
	case query.SortRecent:
		return query.SortPriceAsc
	case query.SortPriceAsc:
		return query.SortPriceDesc
	}
	return query.SortRecent
}
