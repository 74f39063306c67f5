package gesture

type Direction int

const (
	None Direction = iota
	Next
	Prev
)

const DefaultSwipeThreshold = 50

// Swipe detects a horizontal swipe between a touch start and end. A leftward
// swipe advances.
type Swipe struct {
	Threshold float64
	startX    float64
	active    bool
}

func (s *Swipe) Start(x float64) {
	s.startX = x
	s.active = true
}

func (s *Swipe) End(x float64) Direction {
	if !s.active {
		return None
	}
	s.active = false
	th := s.Threshold
	if th <= 0 {
		th = DefaultSwipeThreshold
	}
	d := s.startX - x
	switch {
	case d > th:
		return Next
	case d < -th:
		return Prev
	}
	return None
}
