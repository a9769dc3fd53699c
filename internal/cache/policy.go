package cache

import "time"

// DefaultMaxAgeDays is how long a saved feed stays valid.
const DefaultMaxAgeDays = 7

// Policy decides whether a cached feed generation may still be served.
type Policy struct {
	MaxAge time.Duration
}

// DefaultPolicy returns a Policy with a 7 day max age.
func DefaultPolicy() Policy {
	return Policy{MaxAge: days(DefaultMaxAgeDays)}
}

// IsFresh reports whether a cache written at timestamp is still valid at now.
// The expiry instant itself is already stale.
func (p Policy) IsFresh(timestamp, now time.Time) bool {
	return now.Before(timestamp.Add(p.MaxAge))
}

// IsFresh is the stateless form of Policy.IsFresh with the age in days.
func IsFresh(timestamp, now time.Time, maxAgeDays int) bool {
	return Policy{MaxAge: days(maxAgeDays)}.IsFresh(timestamp, now)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
