package details

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"marketpaline/internal/domain"
)

const DefaultShareBaseURL = "https://marketpaline.app"

func SharePayload(l domain.Listing, baseURL string) domain.SharePayload {
	if baseURL == "" {
		baseURL = DefaultShareBaseURL
	}
	return domain.SharePayload{
		Title: "Check out this listing on MarketPaLine",
		Text:  fmt.Sprintf("%s\nLocation: %s\nPrice: %s", l.Title, l.Location, domain.FormatMK(l.Price)),
		URL:   fmt.Sprintf("%s/listing/%d", strings.TrimRight(baseURL, "/"), l.ID),
	}
}

type ShareResult struct {
	Shared   bool                `json:"shared"`
	Payload  domain.SharePayload `json:"payload"`
	Fallback string              `json:"fallback,omitempty"`
}

// Share hands the payload to a native sharer when there is one. Without it
// the caller shows the fallback message. Sharer errors are logged only.
func Share(ctx context.Context, s domain.Sharer, p domain.SharePayload) ShareResult {
	if s == nil {
		return ShareResult{Payload: p, Fallback: "Sharing is not supported on your browser. You can manually copy the link: " + p.URL}
	}
	if err := s.Share(ctx, p); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("url", p.URL).Msg("share failed")
		return ShareResult{Payload: p}
	}
	return ShareResult{Shared: true, Payload: p}
}
