package tui_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"marketpaline/internal/app"
	"marketpaline/internal/domain"
	"marketpaline/internal/gesture"
	"marketpaline/internal/navigation"
	"marketpaline/internal/storage/memory"
	"marketpaline/internal/tui"
)

func reverse(ls []domain.Listing) {
	for i, j := 0, len(ls)-1; i < j; i, j = i+1, j-1 {
		ls[i], ls[j] = ls[j], ls[i]
	}
}

func newModel(t *testing.T) *tui.Model {
	t.Helper()
	repo := memory.New()
	if _, err := app.NewSeedService(nil, repo, nil).SeedFixtures(context.Background(), "general"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m, err := tui.New(context.Background(), tui.Options{
		Variant: "general",
		Repo:    repo,
		Shuffle: reverse,
		Now:     func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if m.Init() == nil {
		t.Fatalf("init should schedule the splash timer")
	}
	send(m, tui.SplashDone())
	return m
}

func send(m *tui.Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func keys(m *tui.Model, ks ...string) {
	for _, k := range ks {
		switch k {
		case "enter":
			send(m, tea.KeyMsg{Type: tea.KeyEnter})
		case "esc":
			send(m, tea.KeyMsg{Type: tea.KeyEsc})
		case "tab":
			send(m, tea.KeyMsg{Type: tea.KeyTab})
		default:
			for _, r := range k {
				send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
			}
		}
	}
}

func TestSplashLandsHome(t *testing.T) {
	m := newModel(t)
	if m.State().Screen != navigation.Home {
		t.Fatalf("expected home, got %s", m.State().Screen)
	}
	if !strings.Contains(m.View(), "MarketPaLine") {
		t.Fatalf("home should show the brand")
	}
}

func TestGatedFavoriteRoundTrip(t *testing.T) {
	m := newModel(t)
	first := m.Browser().Result().Items[0]

	keys(m, "enter")
	if m.State().Screen != navigation.ListingDetails || m.State().Selected.ID != first.ID {
		t.Fatalf("expected details of %d", first.ID)
	}
	keys(m, "f")
	if m.State().Screen != navigation.Login || len(m.State().Favorites) != 0 {
		t.Fatalf("favorite must defer to login without mutating: %+v", m.State())
	}
	keys(m, "enter")
	if m.State().Screen != navigation.RoleSelection {
		t.Fatalf("expected role selection, got %s", m.State().Screen)
	}
	keys(m, "1")
	if m.State().Screen != navigation.ListingDetails {
		t.Fatalf("expected return to details, got %s", m.State().Screen)
	}
	keys(m, "f")
	if !m.State().IsFavorite(first.ID) {
		t.Fatalf("favorite not recorded")
	}
}

func TestMousePullRefreshes(t *testing.T) {
	m := newModel(t)
	before := m.Browser().Result().Items[0].ID

	send(m, tea.MouseMsg{Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	send(m, tea.MouseMsg{Y: 3, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	if m.Puller().Phase() != gesture.Pulling || m.Puller().Armed() {
		t.Fatalf("short pull should not arm: %v %v", m.Puller().Phase(), m.Puller().Position())
	}
	send(m, tea.MouseMsg{Y: 9, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	cmd := send(m, tea.MouseMsg{Y: 9, Action: tea.MouseActionRelease})
	if cmd == nil || !m.Puller().Refreshing() {
		t.Fatalf("full pull should start a refresh")
	}
	if !strings.Contains(m.View(), "Refreshing") {
		t.Fatalf("view should show the refresh indicator")
	}

	send(m, tui.RefreshDone())
	if m.Puller().Phase() != gesture.Idle {
		t.Fatalf("refresh should complete")
	}
	if after := m.Browser().Result().Items[0].ID; after == before {
		t.Fatalf("refresh should reorder listings")
	}
}

func TestSearchAndCategory(t *testing.T) {
	m := newModel(t)
	keys(m, "/", "49", "enter")
	res := m.Browser().Result()
	if res.Count == 0 {
		t.Fatalf("expected matches for 49")
	}
	for _, l := range res.Items {
		if !strings.Contains(l.Title+l.Location+strconv.FormatInt(l.Price, 10), "49") {
			t.Fatalf("listing %d does not match", l.ID)
		}
	}

	keys(m, "/", "esc")
	keys(m, "tab")
	if m.Browser().Query().Bucket.ID != "house_rental" {
		t.Fatalf("tab should move to the next chip, got %s", m.Browser().Query().Bucket.ID)
	}
}

func TestReviewAndMessages(t *testing.T) {
	m := newModel(t)
	keys(m, "L", "enter", "1")
	if !m.State().Authenticated || m.State().Screen != navigation.Home {
		t.Fatalf("expected logged in buyer on home: %+v", m.State())
	}

	keys(m, "enter", "w", "5", "Lovely place", "enter")
	sel := m.State().Selected
	if len(sel.Reviews) == 0 || sel.Reviews[0].Comment != "Lovely place" || sel.Reviews[0].Rating != 5 {
		t.Fatalf("review not shown first: %+v", sel.Reviews)
	}

	keys(m, "c")
	if m.State().Screen != navigation.Messages {
		t.Fatalf("expected messages, got %s", m.State().Screen)
	}
	keys(m, "enter", "Hello")
	cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("sending should schedule the auto reply")
	}
	send(m, tui.Reply())
	if !strings.Contains(m.View(), "Let me check my schedule") {
		t.Fatalf("auto reply missing from view")
	}
}
