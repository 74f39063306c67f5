// Package tui is the terminal client: a bubbletea program driving one local
// session through the same navigation, query and gesture packages as the
// API.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"marketpaline/internal/catalog"
	"marketpaline/internal/details"
	"marketpaline/internal/domain"
	"marketpaline/internal/gesture"
	"marketpaline/internal/messaging"
	"marketpaline/internal/query"
	"marketpaline/internal/session"
)

// SplashDelay is how long the splash screen stays up.
const SplashDelay = 3 * time.Second

// rowPx converts terminal rows into the pixel scale the pull gesture uses.
const rowPx = 20.0

type Options struct {
	Variant      string
	Repo         domain.ListingRepository
	Pull         gesture.Config
	SplashDelay  time.Duration
	ReplyDelay   time.Duration
	ShareBaseURL string
	Shuffle      query.Shuffler
	Now          func() time.Time
}

type inputMode int

const (
	modeNone inputMode = iota
	modeSearch
	modeReview
	modeInquiry
	modeMessage
)

type (
	splashDoneMsg  struct{}
	refreshDoneMsg struct{}
	replyMsg       struct{}
)

type Model struct {
	ctx     context.Context
	opts    Options
	variant catalog.Variant
	st      *session.State

	browser *query.Browser
	cursor  int
	puller  *gesture.Puller
	swipe   gesture.Swipe
	gallery *details.Gallery
	thread  *messaging.Thread

	mode    inputMode
	input   textinput.Model
	rating  int
	spinner spinner.Model

	status    string
	statusErr bool
	width     int
	height    int
}

func New(ctx context.Context, o Options) (*Model, error) {
	v, err := catalog.Lookup(o.Variant)
	if err != nil {
		return nil, err
	}
	if o.SplashDelay <= 0 {
		o.SplashDelay = SplashDelay
	}
	if o.ReplyDelay <= 0 {
		o.ReplyDelay = 2 * time.Second
	}
	if o.Shuffle == nil {
		o.Shuffle = query.RandomShuffle
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	st, err := session.New(v.Name, o.Now())
	if err != nil {
		return nil, err
	}
	listings, err := o.Repo.ListListings(ctx, domain.ListingsQuery{Variant: v.Name})
	if err != nil {
		return nil, err
	}
	fx, err := catalog.LoadFixtures(v.Name)
	if err != nil {
		return nil, err
	}

	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 280

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return &Model{
		ctx:     ctx,
		opts:    o,
		variant: v,
		st:      st,
		browser: query.NewBrowser(v, listings),
		puller:  gesture.NewPuller(o.Pull),
		thread:  messaging.NewThread(fx.Messages),
		input:   in,
		spinner: sp,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.Tick(m.opts.SplashDelay, func(time.Time) tea.Msg { return splashDoneMsg{} }))
}

// State exposes the session for inspection.
func (m *Model) State() *session.State { return m.st }

func (m *Model) Browser() *query.Browser { return m.browser }

func (m *Model) Puller() *gesture.Puller { return m.puller }

func (m *Model) Status() string { return m.status }

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// SplashDone, RefreshDone and Reply build the timer messages the program
// would otherwise receive later.
func SplashDone() tea.Msg  { return splashDoneMsg{} }
func RefreshDone() tea.Msg { return refreshDoneMsg{} }
func Reply() tea.Msg       { return replyMsg{} }
