// Package ratelimit provides keyed sliding-window rate limiting.
//
// Each key gets an independent budget of requests counted over a trailing
// time window. The extraction pipeline keys the limiter by identity id,
// which bounds how hard any single synthetic persona can hammer the
// upstream; a freshly minted identity always starts with a full budget.
//
// Usage:
//
//	limiter := ratelimit.NewKeyedSlidingWindow(3, time.Minute)
//
//	if !limiter.Allow(identityID) {
//	    // budget exhausted for this identity within the window
//	}
package ratelimit
