// Package model defines shared data structures for the discovery service.
package model

import (
	"encoding/json"
	"strings"
)

// PortalConfig mirrors the portal_configs table row relevant to scraping.
// One row per Workday career portal to scan.
type PortalConfig struct {
	ID                  string   `json:"id"`
	PortalURL           string   `json:"portalUrl"`
	SearchText          string   `json:"searchText"`
	CountryID           string   `json:"countryId,omitempty"`           // Workday country facet id
	LocationHierarchyID string   `json:"locationHierarchyId,omitempty"` // Workday locationHierarchy1 facet id
	TodayOnly           bool     `json:"todayOnly"`                     // keep only postings whose postedOn says "today"
	ExcludeTerms        []string `json:"excludeTerms,omitempty"`        // exclusion terms — any match discards the posting
}

// JobSummary is one posting discovered during listing pagination.
// Identity (and the dedup key) is the canonical absolute URL.
type JobSummary struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	URL      string `json:"url"`
	PostedOn string `json:"posted,omitempty"`
}

// Source tags which extraction tier produced a JobDetails record.
type Source string

const (
	SourceLDJSON Source = "ld+json"
	SourceMeta   Source = "meta"
	SourceRegex  Source = "regex"
	SourceNone   Source = "none"
)

// EmploymentType holds the upstream employmentType value, which is sometimes a
// single string and sometimes an array. It marshals back out as an array.
type EmploymentType []string

// UnmarshalJSON accepts a bare string, an array of strings, or an object, and
// normalises to a string slice.
func (e *EmploymentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = splitEmploymentType(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*e = list
		return nil
	}
	// Object or mixed array — keep whatever string values it contains.
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = flattenEmploymentType(raw)
	return nil
}

// ParseEmploymentType converts a raw employment-type string into a normalised
// slice. Values that look like JSON arrays/objects are parsed as such;
// otherwise the string is comma-split.
func ParseEmploymentType(raw string) EmploymentType {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var e EmploymentType
		if err := e.UnmarshalJSON([]byte(trimmed)); err == nil && len(e) > 0 {
			return e
		}
	}
	return splitEmploymentType(trimmed)
}

func splitEmploymentType(s string) EmploymentType {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.Contains(s, ",") {
		return EmploymentType{s}
	}
	parts := strings.Split(s, ",")
	out := make(EmploymentType, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func flattenEmploymentType(v any) EmploymentType {
	switch t := v.(type) {
	case string:
		return splitEmploymentType(t)
	case []any:
		var out EmploymentType
		for _, item := range t {
			out = append(out, flattenEmploymentType(item)...)
		}
		return out
	case map[string]any:
		// e.g. {"type": "FULL_TIME"}
		for _, key := range []string{"type", "name", "value"} {
			if s, ok := t[key].(string); ok && s != "" {
				return splitEmploymentType(s)
			}
		}
	}
	return nil
}

// JobDetails is the enriched record for one job page. All text fields are
// HTML-entity-decoded before the record is returned.
type JobDetails struct {
	Description        string         `json:"description"`
	HiringOrganization string         `json:"hiringOrganization"`
	EmploymentType     EmploymentType `json:"employmentType,omitempty"`
	Title              string         `json:"title"`
	DatePosted         string         `json:"datePosted"`
	ValidThrough       string         `json:"validThrough"`
	Source             Source         `json:"source"`
}

// Empty reports whether no extraction tier produced any field.
func (d JobDetails) Empty() bool {
	return d.Description == "" && d.HiringOrganization == "" &&
		len(d.EmploymentType) == 0 && d.Title == "" &&
		d.DatePosted == "" && d.ValidThrough == ""
}

// AnalysisResult is the normalised output of model analysis for one job.
// It is always produced — malformed model output surfaces as nil/empty fields
// plus Error, never as a failure that aborts the caller.
type AnalysisResult struct {
	IsFresher      *bool  `json:"isFresher"`      // nil = unknown
	TechSkills     string `json:"techSkills"`     // comma-joined, "" = unknown
	Qualifications string `json:"qualifications"` // one line, "" = unknown
	Raw            string `json:"raw"`            // raw model text, kept for audit
	Error          string `json:"error,omitempty"`
}

// AnalyzedJob is the final record handed to the result sink.
type AnalyzedJob struct {
	Summary  JobSummary     `json:"summary"`
	Details  JobDetails     `json:"details"`
	Analysis AnalysisResult `json:"analysis"`
}
