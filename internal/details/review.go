package details

import (
	"fmt"
	"strings"
	"time"

	"marketpaline/internal/domain"
)

// DefaultAuthor is shown on reviews until profiles carry real names.
const DefaultAuthor = "John Doe"

// NewReview validates a submission and stamps it. Rating zero means "not
// chosen" and is rejected like any value outside 1..5. The ID is left zero;
// the repository assigns it when the review is stored.
func NewReview(listingID int64, rating int, comment, author string, now time.Time) (domain.Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.Review{}, fmt.Errorf("%w: comment is required", domain.ErrInvalidReview)
	}
	if strings.TrimSpace(author) == "" {
		author = DefaultAuthor
	}
	r := domain.Review{
		ListingID:  listingID,
		AuthorName: author,
		Rating:     rating,
		Comment:    comment,
		Timestamp:  "Just now",
		CreatedAt:  now.UTC(),
	}
	if err := r.Validate(); err != nil {
		return domain.Review{}, err
	}
	return r, nil
}

// PrependReview returns a copy of l with r as its newest review.
func PrependReview(l domain.Listing, r domain.Review) domain.Listing {
	out := l.Clone()
	out.Reviews = append([]domain.Review{r}, l.Reviews...)
	return out
}
