package normalize

import (
	"net/url"
	"strings"
)

// Constraint is a URL-admission predicate applied to candidate links
// before they are enqueued. A URL is admitted iff every constraint
// accepts it.
type Constraint func(u url.URL) bool

// Admitted reports whether every constraint accepts the URL.
func Admitted(u url.URL, constraints []Constraint) bool {
	for _, constraint := range constraints {
		if !constraint(u) {
			return false
		}
	}
	return true
}

// SameHost admits only URLs on the given host.
func SameHost(host string) Constraint {
	return func(u url.URL) bool {
		return u.Host == host
	}
}

// SchemeIn admits only URLs carrying one of the given schemes.
func SchemeIn(schemes ...string) Constraint {
	return func(u url.URL) bool {
		for _, scheme := range schemes {
			if u.Scheme == scheme {
				return true
			}
		}
		return false
	}
}

// PathPrefix admits only URLs whose path starts with the given prefix.
func PathPrefix(prefix string) Constraint {
	return func(u url.URL) bool {
		return strings.HasPrefix(u.Path, prefix)
	}
}
