// Package details is the interaction surface of a single listing: gated
// actions, reviews, the image gallery, sharing, inquiries and viewings.
package details

type Action string

const (
	ActionFavorite Action = "favorite"
	ActionShare    Action = "share"
	ActionInquire  Action = "inquire"
	ActionSchedule Action = "schedule_viewing"
	ActionReview   Action = "review"
	ActionContact  Action = "contact"
)

// Gated reports whether an action needs an authenticated session.
func (a Action) Gated() bool { return a != ActionShare }

type Outcome string

const (
	Performed     Outcome = "performed"
	LoginRequired Outcome = "login_required"
)

// Gate decides whether an action may run now. A deferred action is not
// resumed after login; the session only returns to the details screen.
func Gate(authenticated bool, a Action) Outcome {
	if a.Gated() && !authenticated {
		return LoginRequired
	}
	return Performed
}
