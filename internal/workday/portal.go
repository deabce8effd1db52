// Package workday implements job discovery against Workday-hosted career
// portals: portal URL resolution, paginated listing search with facet
// fallback, and per-job detail extraction.
package workday

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrUnsupportedPortal marks a portal URL that matches neither known Workday
// layout. This is a permanent classification error — callers skip the portal
// and must not retry.
var ErrUnsupportedPortal = errors.New("unsupported workday portal URL format")

var (
	// Convention A: <tenant>.wd<N>.myworkdayjobs.com, portal = last path segment.
	hostTenantRe = regexp.MustCompile(`^(.+?)\.(wd\d+)\.myworkdayjobs\.com$`)

	// Convention B: wd<N>.myworkdaysite.com/.../<tenant>/<portal>.
	hostSiteRe = regexp.MustCompile(`^wd\d+\.myworkdaysite\.com$`)
)

// Portal is a resolved Workday career portal.
type Portal struct {
	Hostname   string
	Tenant     string
	PortalSlug string
	SearchURL  string // internal cxs job-search endpoint
	JobURLBase string // public portal URL, trailing slash stripped
}

// ResolvePortal parses a portal's public URL into the tenant and portal slugs
// and derives the internal search endpoint. Two hostname conventions are
// recognised; anything else fails with ErrUnsupportedPortal.
func ResolvePortal(portalURL string) (*Portal, error) {
	u, err := url.Parse(portalURL)
	if err != nil {
		return nil, fmt.Errorf("parse portal URL %q: %w", portalURL, ErrUnsupportedPortal)
	}

	segments := splitPath(u.Path)

	var tenant, portal string
	switch {
	case hostTenantRe.MatchString(u.Hostname()):
		m := hostTenantRe.FindStringSubmatch(u.Hostname())
		tenant = m[1]
		if len(segments) > 0 {
			portal = segments[len(segments)-1]
		}
	case hostSiteRe.MatchString(u.Hostname()):
		if len(segments) >= 2 {
			tenant = segments[len(segments)-2]
			portal = segments[len(segments)-1]
		}
	default:
		return nil, fmt.Errorf("host %q: %w", u.Hostname(), ErrUnsupportedPortal)
	}

	if tenant == "" || portal == "" {
		return nil, fmt.Errorf("could not extract tenant/portal from %q: %w", portalURL, ErrUnsupportedPortal)
	}

	return &Portal{
		Hostname:   u.Hostname(),
		Tenant:     tenant,
		PortalSlug: portal,
		SearchURL:  fmt.Sprintf("https://%s/wday/cxs/%s/%s/jobs", u.Hostname(), tenant, portal),
		JobURLBase: strings.TrimRight(portalURL, "/"),
	}, nil
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
