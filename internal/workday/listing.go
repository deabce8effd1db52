package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"jobmate/workday-discovery/internal/model"
)

const (
	listingPageSize = 20
	httpTimeout     = 15 * time.Second

	// Browser-ish UA — some tenants reject requests without one.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	locationUnspecified = "Location not specified"
)

// Fetcher discovers job postings from Workday portals over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher constructs a Fetcher with a shared HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: httpTimeout}}
}

// NewFetcherWithClient constructs a Fetcher around an existing client.
// Used by tests to point at an httptest server.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// listingRequest mirrors the Workday cxs job-search request body.
type listingRequest struct {
	Limit         int                 `json:"limit"`
	Offset        int                 `json:"offset"`
	SearchText    string              `json:"searchText"`
	AppliedFacets map[string][]string `json:"appliedFacets"`
}

// listingResponse mirrors the top-level Workday search response.
type listingResponse struct {
	JobPostings []jobPosting `json:"jobPostings"`
	Total       int          `json:"total"`
}

// jobPosting mirrors a single posting in the search response. Tenants differ
// on which title field they populate.
type jobPosting struct {
	Title           string `json:"title"`
	DisplayJobTitle string `json:"displayJobTitle"`
	LocationsText   string `json:"locationsText"`
	ExternalPath    string `json:"externalPath"`
	PostedOn        string `json:"postedOn"`
}

func (p jobPosting) title() string {
	if p.Title != "" {
		return p.Title
	}
	return p.DisplayJobTitle
}

// ListQuery carries the caller-supplied search parameters for one portal run.
type ListQuery struct {
	SearchText          string
	CountryID           string
	LocationHierarchyID string
	TodayOnly           bool
}

// ListJobs pages through a portal's search API and returns the deduplicated
// postings. Listing pages are fetched in strictly increasing offset order.
//
// HTTP 400 responses are treated as facet rejections and escalate the filter
// fallback ladder, retrying the same offset; once the ladder is exhausted the
// portal is abandoned and the jobs accumulated so far are returned without
// error (a misbehaving portal must never abort the whole run). Any other
// non-2xx status is a hard error for this portal.
func (f *Fetcher) ListJobs(ctx context.Context, portal *Portal, q ListQuery) ([]model.JobSummary, error) {
	facet := InitialFacet(q.CountryID)

	req := listingRequest{
		Limit:         listingPageSize,
		Offset:        0,
		SearchText:    q.SearchText,
		AppliedFacets: AppliedFacets(facet, q.CountryID, q.LocationHierarchyID),
	}

	var jobs []model.JobSummary
	seen := map[string]bool{}

	for {
		resp, status, err := f.search(ctx, portal.SearchURL, req)
		if err != nil {
			return jobs, err
		}

		if status == http.StatusBadRequest {
			next := NextFacet(facet, q.CountryID, q.LocationHierarchyID)
			if next == FacetExhausted {
				log.Printf("[fetcher] All location filters rejected by %s — returning %d job(s) found so far",
					portal.SearchURL, len(jobs))
				return jobs, nil
			}
			log.Printf("[fetcher] Facet %s rejected by %s — retrying with %s", facet, portal.SearchURL, next)
			facet = next
			req.AppliedFacets = AppliedFacets(facet, q.CountryID, q.LocationHierarchyID)
			continue // same offset
		}
		if status < 200 || status > 299 {
			return jobs, fmt.Errorf("workday search returned HTTP %d", status)
		}

		postings := resp.JobPostings
		if len(postings) == 0 {
			break
		}

		newInBatch := false
		for _, p := range postings {
			title := p.title()
			if title == "" || p.ExternalPath == "" {
				continue
			}

			jobURL := portal.JobURLBase + p.ExternalPath
			if seen[jobURL] {
				continue
			}
			seen[jobURL] = true
			newInBatch = true

			if q.TodayOnly && !postedToday(p.PostedOn) {
				continue
			}

			location := p.LocationsText
			if location == "" {
				location = locationUnspecified
			}
			jobs = append(jobs, model.JobSummary{
				Title:    title,
				Location: location,
				URL:      jobURL,
				PostedOn: p.PostedOn,
			})
		}

		// A batch with no new URLs means the tenant is ignoring the offset
		// and replaying the first page — stop rather than loop forever.
		if len(postings) < listingPageSize || !newInBatch {
			break
		}
		req.Offset += listingPageSize
	}

	return jobs, nil
}

func (f *Fetcher) search(ctx context.Context, endpoint string, body listingRequest) (*listingResponse, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	var out listingResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("json unmarshal: %w", err)
	}
	return &out, resp.StatusCode, nil
}

// postedToday reports whether the raw postedOn string says the job went up
// today. Workday returns human text like "Posted Today" or "Posted 3 Days Ago".
func postedToday(postedOn string) bool {
	return strings.Contains(strings.ToLower(postedOn), "today")
}
