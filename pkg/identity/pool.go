package identity

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Identity is a synthetic browsing persona. The fingerprint and user-agent
// never change after creation; the cookie jar and counters are the mutable
// session state that rides along with it.
type Identity struct {
	ID           string
	Fingerprint  Fingerprint
	UserAgent    string
	CreatedAt    time.Time
	LastUsed     time.Time
	RequestCount int

	// Cookie jar: name to latest raw cookie value, in insertion order
	cookieNames  []string
	cookieValues map[string]string
}

// Pool creates and tracks identities. Cookies persist within one identity
// across successive strategy calls but never leak across identities, so
// minting a fresh identity resets any suspicion state the upstream has
// accumulated.
type Pool struct {
	mu             sync.Mutex
	identities     map[string]*Identity
	fabricator     *Fabricator
	sessionTimeout time.Duration
	capacity       int
	now            func() time.Time
}

// NewPool creates an identity pool. Capacity bounds the number of retained
// identities; when full, the longest-idle entry is evicted.
func NewPool(fabricator *Fabricator, sessionTimeout time.Duration, capacity int) *Pool {
	if fabricator == nil {
		fabricator = NewFabricator()
	}
	if capacity <= 0 {
		capacity = 1000
	}
	return &Pool{
		identities:     make(map[string]*Identity),
		fabricator:     fabricator,
		sessionTimeout: sessionTimeout,
		capacity:       capacity,
		now:            time.Now,
	}
}

// Create fabricates and registers a new identity
func (p *Pool) Create() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	ident := &Identity{
		ID:           uuid.NewString(),
		Fingerprint:  p.fabricator.Fingerprint(),
		UserAgent:    p.fabricator.UserAgent(),
		CreatedAt:    now,
		LastUsed:     now,
		cookieValues: make(map[string]string),
	}

	if len(p.identities) >= p.capacity {
		p.evictOldest()
	}
	p.identities[ident.ID] = ident

	return ident
}

// Get returns the identity for id if it exists and has been used within the
// session timeout. On success, the last-used time is touched and the request
// counter incremented. Absent and expired identities look identical to the
// caller.
func (p *Pool) Get(id string) (*Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ident, ok := p.identities[id]
	if !ok {
		return nil, false
	}

	now := p.now()
	if now.Sub(ident.LastUsed) >= p.sessionTimeout {
		delete(p.identities, id)
		return nil, false
	}

	ident.LastUsed = now
	ident.RequestCount++
	return ident, true
}

// RecordCookies merges raw Set-Cookie values into the identity's jar. Only
// the name to raw-value mapping is kept; last write wins for repeated names.
func (p *Pool) RecordCookies(id string, rawCookies []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ident, ok := p.identities[id]
	if !ok {
		return
	}

	for _, raw := range rawCookies {
		name, _, found := strings.Cut(raw, "=")
		if !found || name == "" {
			continue
		}
		if _, exists := ident.cookieValues[name]; !exists {
			ident.cookieNames = append(ident.cookieNames, name)
		}
		ident.cookieValues[name] = raw
	}
}

// CookieHeader joins the identity's cookie values with "; " in insertion
// order, ready to send as the outgoing Cookie header
func (p *Pool) CookieHeader(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	ident, ok := p.identities[id]
	if !ok {
		return ""
	}

	values := make([]string, 0, len(ident.cookieNames))
	for _, name := range ident.cookieNames {
		values = append(values, ident.cookieValues[name])
	}
	return strings.Join(values, "; ")
}

// Sweep removes identities idle past the session timeout and returns how
// many were dropped
func (p *Pool) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	removed := 0
	for id, ident := range p.identities {
		if now.Sub(ident.LastUsed) >= p.sessionTimeout {
			delete(p.identities, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of retained identities
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.identities)
}

// evictOldest drops the longest-idle identity. Caller must hold the lock.
func (p *Pool) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, ident := range p.identities {
		if oldestID == "" || ident.LastUsed.Before(oldest) {
			oldestID = id
			oldest = ident.LastUsed
		}
	}
	if oldestID != "" {
		delete(p.identities, oldestID)
	}
}
