package workday_test

import (
	"errors"
	"testing"

	"jobmate/workday-discovery/internal/workday"
)

// ── Convention A: <tenant>.wd<N>.myworkdayjobs.com ─────────────────────────

func TestResolvePortal_TenantHostname(t *testing.T) {
	p, err := workday.ResolvePortal("https://autodesk.wd1.myworkdayjobs.com/Ext")
	if err != nil {
		t.Fatalf("ResolvePortal returned unexpected error: %v", err)
	}
	if p.Tenant != "autodesk" {
		t.Errorf("Tenant = %q, want %q", p.Tenant, "autodesk")
	}
	if p.PortalSlug != "Ext" {
		t.Errorf("PortalSlug = %q, want %q", p.PortalSlug, "Ext")
	}
	if want := "https://autodesk.wd1.myworkdayjobs.com/wday/cxs/autodesk/Ext/jobs"; p.SearchURL != want {
		t.Errorf("SearchURL = %q, want %q", p.SearchURL, want)
	}
	if want := "https://autodesk.wd1.myworkdayjobs.com/Ext"; p.JobURLBase != want {
		t.Errorf("JobURLBase = %q, want %q", p.JobURLBase, want)
	}
}

func TestResolvePortal_TrailingSlashStripped(t *testing.T) {
	p, err := workday.ResolvePortal("https://amadeus.wd3.myworkdayjobs.com/jobs/")
	if err != nil {
		t.Fatalf("ResolvePortal returned unexpected error: %v", err)
	}
	if p.PortalSlug != "jobs" {
		t.Errorf("PortalSlug = %q, want %q", p.PortalSlug, "jobs")
	}
	if want := "https://amadeus.wd3.myworkdayjobs.com/jobs"; p.JobURLBase != want {
		t.Errorf("JobURLBase = %q, want %q", p.JobURLBase, want)
	}
}

func TestResolvePortal_LocalePathSegment(t *testing.T) {
	// Portal slug is the LAST path segment, locale prefixes are ignored.
	p, err := workday.ResolvePortal("https://capitalone.wd12.myworkdayjobs.com/en-US/Capital_One")
	if err != nil {
		t.Fatalf("ResolvePortal returned unexpected error: %v", err)
	}
	if p.Tenant != "capitalone" {
		t.Errorf("Tenant = %q, want %q", p.Tenant, "capitalone")
	}
	if p.PortalSlug != "Capital_One" {
		t.Errorf("PortalSlug = %q, want %q", p.PortalSlug, "Capital_One")
	}
}

// ── Convention B: wd<N>.myworkdaysite.com/…/<tenant>/<portal> ──────────────

func TestResolvePortal_SiteHostname(t *testing.T) {
	p, err := workday.ResolvePortal("https://wd1.myworkdaysite.com/recruiting/acme/External")
	if err != nil {
		t.Fatalf("ResolvePortal returned unexpected error: %v", err)
	}
	if p.Tenant != "acme" {
		t.Errorf("Tenant = %q, want %q", p.Tenant, "acme")
	}
	if p.PortalSlug != "External" {
		t.Errorf("PortalSlug = %q, want %q", p.PortalSlug, "External")
	}
	if want := "https://wd1.myworkdaysite.com/wday/cxs/acme/External/jobs"; p.SearchURL != want {
		t.Errorf("SearchURL = %q, want %q", p.SearchURL, want)
	}
}

// ── Unsupported shapes ─────────────────────────────────────────────────────

func TestResolvePortal_Unsupported(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"unknown host", "https://jobs.example.com/careers"},
		{"tenant host without portal path", "https://acme.wd5.myworkdayjobs.com"},
		{"site host with one segment", "https://wd1.myworkdaysite.com/External"},
		{"not a URL at all", "://bad"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := workday.ResolvePortal(c.url)
			if !errors.Is(err, workday.ErrUnsupportedPortal) {
				t.Errorf("ResolvePortal(%q) error = %v, want ErrUnsupportedPortal", c.url, err)
			}
		})
	}
}
