package details

import (
	"marketpaline/internal/domain"
	"marketpaline/internal/gesture"
)

// Gallery is a wraparound cursor over a listing's images.
type Gallery struct {
	images []string
	idx    int
}

func NewGallery(l domain.Listing) *Gallery {
	return &Gallery{images: l.Gallery()}
}

func (g *Gallery) Len() int   { return len(g.images) }
func (g *Gallery) Index() int { return g.idx }

func (g *Gallery) Current() string {
	if len(g.images) == 0 {
		return ""
	}
	return g.images[g.idx]
}

func (g *Gallery) Next() {
	if n := len(g.images); n > 0 {
		g.idx = (g.idx + 1) % n
	}
}

func (g *Gallery) Prev() {
	if n := len(g.images); n > 0 {
		g.idx = (g.idx - 1 + n) % n
	}
}

// Jump selects a dot indicator; out of range is ignored.
func (g *Gallery) Jump(i int) {
	if i >= 0 && i < len(g.images) {
		g.idx = i
	}
}

func (g *Gallery) Swipe(d gesture.Direction) {
	switch d {
	case gesture.Next:
		g.Next()
	case gesture.Prev:
		g.Prev()
	}
}
