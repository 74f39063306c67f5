package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"marketpaline/internal/app"
	"marketpaline/internal/details"
	"marketpaline/internal/domain"
	"marketpaline/internal/session"
)

type Handlers struct {
	Q *app.QueryService
	S *app.SessionService
	// Sharer is nil for server-side rendering; clients share natively.
	Sharer       domain.Sharer
	ShareBaseURL string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/variants/{variant}", h.getVariant)
		r.Get("/notifications", h.listNotifications)

		r.Get("/listings", h.browse)
		r.Get("/listings/{id}", h.getListing)
		r.Get("/listings/{id}/reviews", h.listReviews)
		r.Get("/listings/{id}/share", h.share)

		r.Post("/sessions", h.createSession)
		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.deleteSession)
			r.Get("/screen", h.getScreen)
			r.Post("/navigate", h.navigate)
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.Post("/role", h.chooseRole)
			r.Post("/select", h.selectListing)
			r.Post("/edit", h.startEdit)
			r.Delete("/edit", h.exitForm)
			r.Post("/back", h.back)
			r.Post("/login-prompt", h.loginPrompt)
			r.Post("/splash-elapsed", h.splashElapsed)

			r.Get("/favorites", h.listFavorites)
			r.Post("/favorites/{id}", h.toggleFavorite)
			r.Post("/reviews", h.submitReview)
			r.Post("/inquiries", h.inquire)
			r.Post("/viewings", h.scheduleViewing)
			r.Get("/messages", h.listMessages)
			r.Post("/messages", h.sendMessage)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrLoginRequired):
		writeProblem(w, http.StatusUnauthorized, "Login required", err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnknownVariant):
		writeProblem(w, http.StatusBadRequest, "Unknown variant", err.Error())
	case errors.Is(err, domain.ErrInvalidReview), errors.Is(err, domain.ErrInvalidListing), errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid input", err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached answers 304 when the client already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write body")
	}
}

// decode reads an optional JSON body; an empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
	return false
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", name+" must be a positive number")
		return 0, false
	}
	return id, true
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid session", "session id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

/********** catalog **********/

func (h *Handlers) getVariant(w http.ResponseWriter, r *http.Request) {
	v, err := h.Q.Variant(chi.URLParam(r, "variant"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, v)
}

func (h *Handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	ns, err := h.Q.Notifications(variantParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, map[string]any{"items": ns})
}

func variantParam(r *http.Request) string {
	if v := r.URL.Query().Get("variant"); v != "" {
		return v
	}
	return "general"
}

func (h *Handlers) browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.Q.Browse(r.Context(), app.BrowseRequest{
		Variant: variantParam(r),
		Bucket:  q.Get("category"),
		Search:  q.Get("q"),
		Sort:    q.Get("sort"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	l, err := h.Q.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, l)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}

	// newest first
	page := domain.PageQuery{Limit: limit, Cursor: nil, Sort: "-created_at"}
	out, err := h.Q.ListReviews(r.Context(), id, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) share(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	l, err := h.Q.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := details.Share(r.Context(), h.Sharer, details.SharePayload(l, h.ShareBaseURL))
	writeJSON(w, r, http.StatusOK, res)
}

/********** sessions **********/

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Variant string `json:"variant"`
	}
	if !decode(w, r, &in) {
		return
	}
	if in.Variant == "" {
		in.Variant = "general"
	}
	st, err := h.S.Create(r.Context(), in.Variant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+st.ID.String())
	writeJSON(w, r, http.StatusCreated, st)
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	st, err := h.S.Get(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (h *Handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.S.Delete(r.Context(), sid); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getScreen(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	v, err := h.S.View(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

// stateCommand adapts a session command without a request body.
func (h *Handlers) stateCommand(fn func(*app.SessionService, *http.Request, uuid.UUID) (*session.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		st, err := fn(h.S, r, sid)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, st)
	}
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.Login(r.Context(), id)
	})(w, r)
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.Logout(r.Context(), id)
	})(w, r)
}

func (h *Handlers) loginPrompt(w http.ResponseWriter, r *http.Request) {
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.LoginPrompt(r.Context(), id)
	})(w, r)
}

func (h *Handlers) splashElapsed(w http.ResponseWriter, r *http.Request) {
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.SplashElapsed(r.Context(), id)
	})(w, r)
}

func (h *Handlers) exitForm(w http.ResponseWriter, r *http.Request) {
	submitted := r.URL.Query().Get("submitted") == "true"
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.ExitForm(r.Context(), id, submitted)
	})(w, r)
}

func (h *Handlers) navigate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Screen string `json:"screen"`
	}
	if !decode(w, r, &in) {
		return
	}
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.Navigate(r.Context(), id, in.Screen)
	})(w, r)
}

func (h *Handlers) chooseRole(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Role string `json:"role"`
	}
	if !decode(w, r, &in) {
		return
	}
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.ChooseRole(r.Context(), id, in.Role)
	})(w, r)
}

func (h *Handlers) selectListing(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ListingID int64 `json:"listing_id"`
	}
	if !decode(w, r, &in) {
		return
	}
	if in.ListingID <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid input", "listing_id is required")
		return
	}
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.Select(r.Context(), id, in.ListingID)
	})(w, r)
}

func (h *Handlers) startEdit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ListingID *int64 `json:"listing_id"`
	}
	if !decode(w, r, &in) {
		return
	}
	h.stateCommand(func(s *app.SessionService, r *http.Request, id uuid.UUID) (*session.State, error) {
		return s.StartEdit(r.Context(), id, in.ListingID)
	})(w, r)
}

func (h *Handlers) back(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	st, moved, err := h.S.Back(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"moved": moved, "session": st})
}

/********** gated actions **********/

func (h *Handlers) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	lid, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	fav, err := h.S.ToggleFavorite(r.Context(), sid, lid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"listing_id": lid, "favorite": fav})
}

func (h *Handlers) listFavorites(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	ls, err := h.S.Favorites(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": ls, "count": len(ls)})
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var in struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !decode(w, r, &in) {
		return
	}
	rv, err := h.S.SubmitReview(r.Context(), sid, in.Rating, in.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, rv)
}

func (h *Handlers) inquire(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var in struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &in) {
		return
	}
	inq, err := h.S.Inquire(r.Context(), sid, in.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, inq)
}

func (h *Handlers) scheduleViewing(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var in struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if !decode(w, r, &in) {
		return
	}
	vr, err := h.S.ScheduleViewing(r.Context(), sid, in.Date, in.Time)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, vr)
}

func (h *Handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	ms, err := h.S.Messages(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": ms})
}

func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &in) {
		return
	}
	m, err := h.S.SendMessage(r.Context(), sid, in.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, m)
}
