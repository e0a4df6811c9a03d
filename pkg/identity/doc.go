// Package identity fabricates synthetic browsing personas and tracks their
// session state.
//
// An identity bundles an immutable device fingerprint and user-agent with a
// mutable cookie jar and usage counters. The pool hands a fresh identity to
// each resolution pass; within a pass, cookies issued by the upstream are
// echoed back on subsequent requests, and rotating to a new identity
// discards that state entirely.
package identity
