package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobmate/workday-discovery/internal/model"
)

// FetchJobDetails fetches one job's public page and extracts structured
// fields, trying tiers in order and returning at the first tier that yields
// any usable field:
//
//  1. embedded ld+json JobPosting blocks
//  2. og:/plain meta tags
//  3. tolerant regex search for quoted key/value pairs in the raw page
//
// "Nothing found" is not an error — the record comes back with source "none".
// Only transport failures (non-2xx fetch) return an error; a single job's
// fetch failure is a per-job concern and is left to the caller.
func (f *Fetcher) FetchJobDetails(ctx context.Context, jobURL string) (model.JobDetails, error) {
	var details model.JobDetails

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jobURL, nil)
	if err != nil {
		return details, err
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return details, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return details, fmt.Errorf("job page fetch returned HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return details, fmt.Errorf("read body: %w", err)
	}

	return ExtractJobDetails(raw), nil
}

// ExtractJobDetails runs the extraction cascade over a fetched page.
// Deterministic: the same page always yields the same record.
func ExtractJobDetails(page []byte) model.JobDetails {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err == nil {
		if d, ok := extractLDJSON(doc); ok {
			return d
		}
		if d, ok := extractMeta(doc); ok {
			return d
		}
	}
	if d, ok := extractRegex(string(page)); ok {
		return d
	}
	return model.JobDetails{Source: model.SourceNone}
}

// ── Tier 1: ld+json ────────────────────────────────────────────────────────

func extractLDJSON(doc *goquery.Document) (model.JobDetails, bool) {
	var details model.JobDetails
	found := false

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var parsed any
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return true // skip unparseable blocks
		}

		items, ok := parsed.([]any)
		if !ok {
			items = []any{parsed}
		}
		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok || !looksLikeJobPosting(item) {
				continue
			}
			details = jobDetailsFromLDJSON(item)
			found = true
			return false // first qualifying block wins
		}
		return true
	})

	return details, found
}

// looksLikeJobPosting reports whether an ld+json item is a JobPosting: its
// declared type mentions "job", or it carries any of the telltale fields.
func looksLikeJobPosting(item map[string]any) bool {
	typ, _ := firstOf(item, "@type", "type").(string)
	if strings.Contains(strings.ToLower(typ), "job") {
		return true
	}
	return item["title"] != nil || item["hiringOrganization"] != nil || item["datePosted"] != nil
}

func jobDetailsFromLDJSON(item map[string]any) model.JobDetails {
	description := stringOrTextValue(firstOf(item, "jobDescription", "description"))

	var org string
	switch ho := firstOf(item, "hiringOrganization", "hiringOrganizationName", "hiringOrg").(type) {
	case string:
		org = ho
	case map[string]any:
		org, _ = firstOf(ho, "name", "@name", "legalName", "organizationName").(string)
	}

	var empType model.EmploymentType
	if v := item["employmentType"]; v != nil {
		if b, err := json.Marshal(v); err == nil {
			_ = json.Unmarshal(b, &empType)
		}
	}

	title, _ := firstOf(item, "title", "name").(string)
	datePosted, _ := item["datePosted"].(string)
	validThrough, _ := firstOf(item, "validThrough", "expirationDate").(string)

	return model.JobDetails{
		Description:        decodeEntities(description),
		HiringOrganization: decodeEntities(org),
		EmploymentType:     empType,
		Title:              decodeEntities(title),
		DatePosted:         strings.TrimSpace(datePosted),
		ValidThrough:       strings.TrimSpace(validThrough),
		Source:             model.SourceLDJSON,
	}
}

// stringOrTextValue handles description fields that are either a plain string
// or a {text: ...} / {"@value": ...} sub-object.
func stringOrTextValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := firstOf(t, "text", "@value").(string); ok {
			return s
		}
	}
	return ""
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// ── Tier 2: meta tags ──────────────────────────────────────────────────────

func extractMeta(doc *goquery.Document) (model.JobDetails, bool) {
	description := metaContent(doc, "og:description", "description")
	title := metaContent(doc, "og:title", "title")
	if description == "" && title == "" {
		return model.JobDetails{}, false
	}
	return model.JobDetails{
		Description: description,
		Title:       title,
		Source:      model.SourceMeta,
	}, true
}

// metaContent returns the content of the first meta tag whose property or
// name attribute matches one of the given names, in order.
func metaContent(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		var content string
		doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			prop, _ := s.Attr("property")
			n, _ := s.Attr("name")
			if prop != name && n != name {
				return true
			}
			content, _ = s.Attr("content")
			return false
		})
		if content = decodeEntities(content); content != "" {
			return content
		}
	}
	return ""
}

// ── Tier 3: tolerant regex ─────────────────────────────────────────────────

var quotedFieldRes = map[string]*regexp.Regexp{}

func init() {
	for _, key := range []string{
		"jobDescription", "description",
		"hiringOrganization", "hiringOrganizationName",
		"employmentType", "title", "name",
		"datePosted", "validThrough", "expirationDate",
	} {
		// "key": "value" with either quote style, escapes tolerated.
		quotedFieldRes[key] = regexp.MustCompile(
			`["']` + regexp.QuoteMeta(key) + `["']\s*:\s*("(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*')`)
	}
}

func extractRegex(page string) (model.JobDetails, bool) {
	find := func(keys ...string) string {
		for _, key := range keys {
			m := quotedFieldRes[key].FindStringSubmatch(page)
			if m == nil {
				continue
			}
			if v := unquoteTolerant(m[1]); v != "" {
				return decodeEntities(v)
			}
		}
		return ""
	}

	details := model.JobDetails{
		Description:        find("jobDescription", "description"),
		HiringOrganization: find("hiringOrganization", "hiringOrganizationName"),
		Title:              find("title", "name"),
		DatePosted:         find("datePosted"),
		ValidThrough:       find("validThrough", "expirationDate"),
		Source:             model.SourceRegex,
	}
	if raw := find("employmentType"); raw != "" {
		details.EmploymentType = model.ParseEmploymentType(raw)
	}

	if details.Empty() {
		return model.JobDetails{}, false
	}
	return details, true
}

// unquoteTolerant unescapes a quoted literal via JSON parsing, falling back
// to a manual strip-and-unescape when that fails (single-quoted literals,
// malformed escapes).
func unquoteTolerant(quoted string) string {
	if strings.HasPrefix(quoted, `"`) {
		var s string
		if err := json.Unmarshal([]byte(quoted), &s); err == nil {
			return s
		}
	}
	if len(quoted) < 2 {
		return ""
	}
	inner := quoted[1 : len(quoted)-1]
	inner = strings.ReplaceAll(inner, `\"`, `"`)
	inner = strings.ReplaceAll(inner, `\'`, `'`)
	return inner
}

func decodeEntities(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
