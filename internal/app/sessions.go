package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"marketpaline/internal/adapters/observability"
	"marketpaline/internal/catalog"
	"marketpaline/internal/details"
	"marketpaline/internal/domain"
	"marketpaline/internal/messaging"
	"marketpaline/internal/navigation"
	"marketpaline/internal/session"
)

type SessionOptions struct {
	ReplyDelay time.Duration
	Scheduler  messaging.Scheduler
	Author     string
	// ThreadIdle drops a chat thread nobody touched for this long. Set it to
	// the session TTL of stores that expire sessions; zero keeps threads
	// until the session is deleted or found missing.
	ThreadIdle time.Duration
	Now        func() time.Time
}

// SessionService runs named commands against stored session state. Every
// transition is one atomic store update.
type SessionService struct {
	store   session.Store
	repo    domain.ListingRepository
	queries *QueryService
	cache   domain.Cache
	opts    SessionOptions
	now     func() time.Time

	mu        sync.Mutex
	threads   map[uuid.UUID]*threadEntry
	lastSweep time.Time
}

type threadEntry struct {
	th   *messaging.Thread
	used time.Time
}

func NewSessionService(st session.Store, r domain.ListingRepository, q *QueryService, c domain.Cache, o SessionOptions) *SessionService {
	if o.Scheduler == nil {
		o.Scheduler = messaging.TimerScheduler{}
	}
	if o.ReplyDelay <= 0 {
		o.ReplyDelay = 2 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &SessionService{
		store: st, repo: r, queries: q, cache: c, opts: o,
		now:     o.Now,
		threads: map[uuid.UUID]*threadEntry{},
	}
}

// ScreenView is what a client needs to render the current screen.
type ScreenView struct {
	Session       uuid.UUID            `json:"session"`
	Screen        navigation.Screen    `json:"screen"`
	Role          navigation.Role      `json:"role"`
	Authenticated bool                 `json:"authenticated"`
	Listing       *domain.Listing      `json:"listing,omitempty"`
	Editing       *domain.Listing      `json:"editing,omitempty"`
	Favorite      bool                 `json:"favorite,omitempty"`
	InquiryDraft  string               `json:"inquiry_draft,omitempty"`
	Contact       string               `json:"contact,omitempty"`
	NavItems      []navigation.NavItem `json:"nav_items,omitempty"`
}

func (s *SessionService) Create(ctx context.Context, variant string) (*session.State, error) {
	st, err := session.New(variant, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, st); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("session", st.ID.String()).Str("variant", st.Variant).Msg("session created")
	return st, nil
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*session.State, error) {
	return s.load(ctx, id)
}

// load reads the session and keeps the thread table in step with the store.
func (s *SessionService) load(ctx context.Context, id uuid.UUID) (*session.State, error) {
	st, err := s.load(ctx, id)
	s.track(id, err)
	return st, err
}

func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.threads, id)
	s.mu.Unlock()
	return s.store.Delete(ctx, id)
}

// View resolves the typed route of the session.
func (s *SessionService) View(ctx context.Context, id uuid.UUID) (ScreenView, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return ScreenView{}, err
	}
	return viewOf(st), nil
}

func viewOf(st *session.State) ScreenView {
	v := ScreenView{
		Session:       st.ID,
		Role:          st.Role,
		Authenticated: st.Authenticated,
		NavItems:      st.NavItems(),
	}
	switch r := st.Route().(type) {
	case navigation.Details:
		l := r.Listing
		v.Listing = &l
		v.Favorite = st.IsFavorite(l.ID)
		v.InquiryDraft = details.InquiryTemplate(l)
	case navigation.ListingForm:
		v.Editing = r.Editing
	case navigation.Conversation:
		v.Listing = r.With
		v.Contact = messaging.ContactName(r.With)
	}
	v.Screen = st.Route().Screen()
	return v
}

func (s *SessionService) command(ctx context.Context, id uuid.UUID, name string, fn func(*session.State) error) (*session.State, error) {
	st, err := s.store.Update(ctx, id, fn)
	s.track(id, err)
	observability.ObserveCommand(name, err)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Str("session", id.String()).Str("command", name).Str("screen", st.Screen.String()).Msg("session command")
	return st, nil
}

// Navigate moves to a named screen. Unknown names land on home.
func (s *SessionService) Navigate(ctx context.Context, id uuid.UUID, screen string) (*session.State, error) {
	to, _ := navigation.ParseScreen(screen)
	return s.command(ctx, id, "navigate", func(st *session.State) error {
		st.NavigateTo(to)
		return nil
	})
}

func (s *SessionService) Login(ctx context.Context, id uuid.UUID) (*session.State, error) {
	return s.command(ctx, id, "login", func(st *session.State) error {
		st.Login()
		return nil
	})
}

func (s *SessionService) Logout(ctx context.Context, id uuid.UUID) (*session.State, error) {
	return s.command(ctx, id, "logout", func(st *session.State) error {
		st.Logout()
		return nil
	})
}

func (s *SessionService) ChooseRole(ctx context.Context, id uuid.UUID, role string) (*session.State, error) {
	r := navigation.ParseRole(role)
	return s.command(ctx, id, "role", func(st *session.State) error { return st.ChooseRole(r) })
}

// Select opens the details screen of a listing.
func (s *SessionService) Select(ctx context.Context, id uuid.UUID, listingID int64) (*session.State, error) {
	l, err := s.queries.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return s.command(ctx, id, "select", func(st *session.State) error {
		if l.Variant != "" && l.Variant != st.Variant {
			return fmt.Errorf("%w: listing %d", domain.ErrNotFound, listingID)
		}
		st.OpenListing(l)
		return nil
	})
}

// StartEdit opens the listing form; a nil listing id starts a new listing.
func (s *SessionService) StartEdit(ctx context.Context, id uuid.UUID, listingID *int64) (*session.State, error) {
	var target *domain.Listing
	if listingID != nil {
		l, err := s.queries.GetListing(ctx, *listingID)
		if err != nil {
			return nil, err
		}
		target = &l
	}
	return s.command(ctx, id, "edit", func(st *session.State) error {
		st.StartEdit(target)
		return nil
	})
}

func (s *SessionService) ExitForm(ctx context.Context, id uuid.UUID, submitted bool) (*session.State, error) {
	return s.command(ctx, id, "exit_form", func(st *session.State) error {
		st.ExitForm(submitted)
		return nil
	})
}

// Back reports moved=false when the current screen has no back target.
func (s *SessionService) Back(ctx context.Context, id uuid.UUID) (st *session.State, moved bool, err error) {
	st, err = s.command(ctx, id, "back", func(st *session.State) error {
		moved = st.Back()
		return nil
	})
	return st, moved, err
}

func (s *SessionService) LoginPrompt(ctx context.Context, id uuid.UUID) (*session.State, error) {
	return s.command(ctx, id, "login_prompt", func(st *session.State) error {
		st.RequireLogin()
		return nil
	})
}

func (s *SessionService) SplashElapsed(ctx context.Context, id uuid.UUID) (*session.State, error) {
	return s.command(ctx, id, "splash_elapsed", func(st *session.State) error {
		st.SplashElapsed()
		return nil
	})
}

// gate checks an action against the session without touching it.
func gate(st *session.State, a details.Action) error {
	out := details.Gate(st.Authenticated, a)
	observability.ObserveGate(string(a), string(out))
	if out == details.LoginRequired {
		return fmt.Errorf("%w: %s", domain.ErrLoginRequired, a)
	}
	return nil
}

func selected(st *session.State) (domain.Listing, error) {
	if st.Selected == nil {
		return domain.Listing{}, fmt.Errorf("%w: no listing selected", domain.ErrInvalidInput)
	}
	return *st.Selected, nil
}

// ToggleFavorite flips a listing in the favorites and reports whether it is
// now a favorite.
func (s *SessionService) ToggleFavorite(ctx context.Context, id uuid.UUID, listingID int64) (bool, error) {
	if _, err := s.queries.GetListing(ctx, listingID); err != nil {
		return false, err
	}
	var fav bool
	_, err := s.command(ctx, id, "favorite", func(st *session.State) error {
		if err := gate(st, details.ActionFavorite); err != nil {
			return err
		}
		fav = st.ToggleFavorite(listingID)
		return nil
	})
	return fav, err
}

// Favorites lists the favorite listings that still exist.
func (s *SessionService) Favorites(ctx context.Context, id uuid.UUID) ([]domain.Listing, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(st.Favorites))
	for _, fid := range st.Favorites {
		l, err := s.queries.GetListing(ctx, fid)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// SubmitReview stores a review on the selected listing and refreshes the
// selection so the review shows first.
func (s *SessionService) SubmitReview(ctx context.Context, id uuid.UUID, rating int, comment string) (domain.Review, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	if err := gate(st, details.ActionReview); err != nil {
		return domain.Review{}, err
	}
	l, err := selected(st)
	if err != nil {
		return domain.Review{}, err
	}
	r, err := details.NewReview(l.ID, rating, comment, s.opts.Author, s.now())
	if err != nil {
		return domain.Review{}, err
	}
	saved, err := s.repo.AddReview(ctx, r)
	if err != nil {
		return domain.Review{}, err
	}
	invalidateListing(ctx, s.cache, l.ID, l.Variant)

	_, err = s.command(ctx, id, "review", func(st *session.State) error {
		st.ReplaceSelected(details.PrependReview(l, saved))
		return nil
	})
	if err != nil {
		return domain.Review{}, err
	}
	log.Ctx(ctx).Info().Str("session", id.String()).Int64("listing", l.ID).Int("rating", saved.Rating).Msg("review added")
	return saved, nil
}

func (s *SessionService) Inquire(ctx context.Context, id uuid.UUID, message string) (details.Inquiry, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return details.Inquiry{}, err
	}
	if err := gate(st, details.ActionInquire); err != nil {
		return details.Inquiry{}, err
	}
	l, err := selected(st)
	if err != nil {
		return details.Inquiry{}, err
	}
	inq, err := details.NewInquiry(l, message)
	if err != nil {
		return details.Inquiry{}, err
	}
	log.Ctx(ctx).Info().Str("session", id.String()).Int64("listing", l.ID).Int64("seller", l.SellerID).Msg("inquiry sent")
	return inq, nil
}

func (s *SessionService) ScheduleViewing(ctx context.Context, id uuid.UUID, date, clock string) (details.ViewingRequest, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return details.ViewingRequest{}, err
	}
	if err := gate(st, details.ActionSchedule); err != nil {
		return details.ViewingRequest{}, err
	}
	l, err := selected(st)
	if err != nil {
		return details.ViewingRequest{}, err
	}
	v, err := catalog.Lookup(st.Variant)
	if err != nil {
		return details.ViewingRequest{}, err
	}
	req, err := details.NewViewingRequest(v, l, date, clock, s.now())
	if err != nil {
		return details.ViewingRequest{}, err
	}
	log.Ctx(ctx).Info().Str("session", id.String()).Int64("listing", l.ID).Str("date", req.Date).Msg("viewing requested")
	return req, nil
}

// thread returns the session's chat, seeded from the variant fixtures.
func (s *SessionService) thread(st *session.State) (*messaging.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.threads[st.ID]; ok {
		e.used = s.now()
		return e.th, nil
	}
	fx, err := catalog.LoadFixtures(st.Variant)
	if err != nil {
		return nil, err
	}
	th := messaging.NewThread(fx.Messages)
	s.threads[st.ID] = &threadEntry{th: th, used: s.now()}
	return th, nil
}

// track forgets the thread of a session the store no longer has, marks the
// thread of a live one as used, and drops threads idle past ThreadIdle.
func (s *SessionService) track(id uuid.UUID, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.mu.Lock()
		delete(s.threads, id)
		s.mu.Unlock()
		return
	case err != nil:
		return
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.threads[id]; ok {
		e.used = now
	}
	idle := s.opts.ThreadIdle
	if idle <= 0 || now.Sub(s.lastSweep) < idle/4 {
		return
	}
	s.lastSweep = now
	for k, e := range s.threads {
		if now.Sub(e.used) > idle {
			delete(s.threads, k)
		}
	}
}

// ActiveThreads is the number of chat threads held in memory.
func (s *SessionService) ActiveThreads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads)
}

func (s *SessionService) Messages(ctx context.Context, id uuid.UUID) ([]domain.Message, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	th, err := s.thread(st)
	if err != nil {
		return nil, err
	}
	return th.Messages(), nil
}

// SendMessage appends an outgoing message; the canned reply follows after
// the configured delay.
func (s *SessionService) SendMessage(ctx context.Context, id uuid.UUID, text string) (domain.Message, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	if err := gate(st, details.ActionContact); err != nil {
		return domain.Message{}, err
	}
	th, err := s.thread(st)
	if err != nil {
		return domain.Message{}, err
	}
	m, ok := th.Send(text, s.now())
	if !ok {
		return domain.Message{}, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	s.opts.Scheduler.AfterFunc(s.opts.ReplyDelay, func() {
		th.Reply(messaging.AutoReply, s.now())
	})
	return m, nil
}
