package extractor

import (
	"context"

	"reelgrab/pkg/identity"
)

// Result carries a strategy's outcome. An empty URL with a nil error is a
// miss: the strategy got a response but found no media location in it.
// Cookies are the raw Set-Cookie values observed on the response; the
// orchestrator merges them into the identity's jar between attempts, so a
// strategy never mutates shared state itself.
type Result struct {
	URL     string
	Cookies []string
}

// Target identifies the post a strategy should go after. Shortcode feeds the
// API-shaped endpoints; PageURL is the normalized original post URL, kept so
// the page scrape hits the address the caller actually supplied.
type Target struct {
	Shortcode string
	PageURL   string
}

// Strategy is one independent way of locating the media URL for a post.
// Implementations issue exactly one outbound request and never let an
// internal failure escape as anything but an error return; the cascade
// treats errors as non-fatal and moves on.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, target Target, ident *identity.Identity, cookieHeader string) (Result, error)
}
