// Package pipeline composes portal discovery, detail extraction and model
// analysis, isolating failures per portal and per job so one bad portal or
// posting never aborts a batch.
package pipeline

import (
	"context"
	"log"

	"jobmate/workday-discovery/internal/analyzer"
	"jobmate/workday-discovery/internal/model"
	"jobmate/workday-discovery/internal/workday"
)

// Orchestrator runs the three pipeline stages.
type Orchestrator struct {
	fetcher  *workday.Fetcher
	analyzer *analyzer.Client
}

// New constructs an Orchestrator.
func New(fetcher *workday.Fetcher, ai *analyzer.Client) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, analyzer: ai}
}

// JobOutcome pairs one discovered posting with its processing result.
// Exactly one of (Job, Err) is meaningful.
type JobOutcome struct {
	Summary model.JobSummary
	Job     model.AnalyzedJob
	Err     error
}

// PortalOutcome pairs one portal config with its discovery result.
type PortalOutcome struct {
	Config model.PortalConfig
	Jobs   []JobOutcome
	Err    error
}

// DiscoverPortal resolves one portal and pages through its listing, applying
// the configured exclusion terms. Resolver failures and non-400 HTTP errors
// are portal-scope errors for the caller to record; an exhausted facet
// fallback degrades to a short (possibly empty) list, not an error.
func (o *Orchestrator) DiscoverPortal(ctx context.Context, cfg model.PortalConfig) ([]model.JobSummary, error) {
	portal, err := workday.ResolvePortal(cfg.PortalURL)
	if err != nil {
		return nil, err
	}

	jobs, err := o.fetcher.ListJobs(ctx, portal, workday.ListQuery{
		SearchText:          cfg.SearchText,
		CountryID:           cfg.CountryID,
		LocationHierarchyID: cfg.LocationHierarchyID,
		TodayOnly:           cfg.TodayOnly,
	})
	if err != nil {
		return nil, err
	}

	kept := jobs[:0]
	excluded := 0
	for _, job := range jobs {
		if ContainsExcludedTerm(job.Title, job.Location, cfg.ExcludeTerms) {
			excluded++
			continue
		}
		kept = append(kept, job)
	}
	if excluded > 0 {
		log.Printf("[pipeline] Portal %s: dropped %d posting(s) matching exclusion terms", cfg.PortalURL, excluded)
	}
	return kept, nil
}

// ProcessJob runs detail extraction then model analysis for one posting.
// A detail fetch failure or an analyzer transport failure is a job-scope
// error; malformed page content and malformed model output are not errors
// and surface inside the record instead.
func (o *Orchestrator) ProcessJob(ctx context.Context, summary model.JobSummary) (model.AnalyzedJob, error) {
	details, err := o.fetcher.FetchJobDetails(ctx, summary.URL)
	if err != nil {
		return model.AnalyzedJob{}, err
	}

	title := details.Title
	if title == "" {
		title = summary.Title
	}
	analysis, err := o.analyzer.Analyze(ctx, title, details.Description)
	if err != nil {
		return model.AnalyzedJob{}, err
	}

	return model.AnalyzedJob{Summary: summary, Details: details, Analysis: analysis}, nil
}

// Run executes the whole pipeline over a set of portals sequentially and
// collects every outcome. Partial success is the return value: this function
// never fails, and a portal's entry records its own error when discovery or
// resolution broke down.
func (o *Orchestrator) Run(ctx context.Context, portals []model.PortalConfig) []PortalOutcome {
	outcomes := make([]PortalOutcome, 0, len(portals))

	for _, cfg := range portals {
		outcome := PortalOutcome{Config: cfg}

		jobs, err := o.DiscoverPortal(ctx, cfg)
		if err != nil {
			log.Printf("[pipeline] Portal %s failed: %v — continuing with next portal", cfg.PortalURL, err)
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		for _, summary := range jobs {
			job, err := o.ProcessJob(ctx, summary)
			if err != nil {
				log.Printf("[pipeline] Job %s failed: %v — continuing with next job", summary.URL, err)
				outcome.Jobs = append(outcome.Jobs, JobOutcome{Summary: summary, Err: err})
				continue
			}
			outcome.Jobs = append(outcome.Jobs, JobOutcome{Summary: summary, Job: job})
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}
