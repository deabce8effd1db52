package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobmate/workday-discovery/internal/analyzer"
	"jobmate/workday-discovery/internal/model"
	"jobmate/workday-discovery/internal/pipeline"
	"jobmate/workday-discovery/internal/workday"
)

// ── Exclusion terms ────────────────────────────────────────────────────────

func TestContainsExcludedTerm(t *testing.T) {
	terms := []string{"senior", "Staff"}

	if !pipeline.ContainsExcludedTerm("Senior Engineer", "Remote", terms) {
		t.Error("case-insensitive title match should be excluded")
	}
	if !pipeline.ContainsExcludedTerm("Engineer", "staff location", terms) {
		t.Error("location match should be excluded")
	}
	if pipeline.ContainsExcludedTerm("Junior Engineer", "Paris", terms) {
		t.Error("non-matching posting should be kept")
	}
	if pipeline.ContainsExcludedTerm("Senior Engineer", "Remote", nil) {
		t.Error("no terms means nothing is excluded")
	}
	if pipeline.ContainsExcludedTerm("Senior Engineer", "Remote", []string{""}) {
		t.Error("empty terms are ignored")
	}
}

// ── Fold semantics ─────────────────────────────────────────────────────────

func TestRun_IsolatesPortalFailures(t *testing.T) {
	orch := pipeline.New(workday.NewFetcher(), analyzer.New(analyzer.Config{}))

	portals := []model.PortalConfig{
		{PortalURL: "https://not-workday.example.com/jobs"},
		{PortalURL: "https://also-bad.example.org"},
	}

	outcomes := orch.Run(context.Background(), portals)
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want one per portal", len(outcomes))
	}
	for _, o := range outcomes {
		if !errors.Is(o.Err, workday.ErrUnsupportedPortal) {
			t.Errorf("portal %s: Err = %v, want ErrUnsupportedPortal", o.Config.PortalURL, o.Err)
		}
	}
}

func TestRun_EndToEndAgainstFakePortal(t *testing.T) {
	// One mux serves the listing API, the job page and the model endpoint, so
	// the whole pipeline can run without touching the network.
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/wday/cxs/acme/Ext/jobs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jobPostings": []map[string]string{
				{"title": "Graduate Engineer", "externalPath": "/job/1", "postedOn": "Posted Today"},
				{"title": "Senior Architect", "externalPath": "/job/2", "postedOn": "Posted Today"},
			},
			"total": 2,
		})
	})
	mux.HandleFunc("/Ext/job/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><script type="application/ld+json">
			{"@type":"JobPosting","title":"Graduate Engineer","description":"entry level role"}
			</script></head></html>`))
	})
	mux.HandleFunc("/ai", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"response":"{\"isFresher\":true,\"techSkills\":\"Go\",\"qualifications\":\"BSc\"}"}}`))
	})

	// Resolver only accepts real Workday hostnames, so build the pipeline
	// around a pre-resolved portal via DiscoverPortal's collaborators.
	fetcher := workday.NewFetcherWithClient(srv.Client())
	ai := analyzer.NewWithClient(analyzer.Config{Endpoint: srv.URL + "/ai", APIKey: "k"}, srv.Client())
	orch := pipeline.New(fetcher, ai)

	portal := &workday.Portal{
		SearchURL:  srv.URL + "/wday/cxs/acme/Ext/jobs",
		JobURLBase: srv.URL + "/Ext",
	}
	jobs, err := fetcher.ListJobs(context.Background(), portal, workday.ListQuery{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}

	kept := jobs[:0]
	for _, j := range jobs {
		if !pipeline.ContainsExcludedTerm(j.Title, j.Location, []string{"senior"}) {
			kept = append(kept, j)
		}
	}
	if len(kept) != 1 {
		t.Fatalf("got %d postings after exclusion, want 1", len(kept))
	}

	out, err := orch.ProcessJob(context.Background(), kept[0])
	if err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if out.Details.Source != model.SourceLDJSON {
		t.Errorf("Details.Source = %q, want structured data", out.Details.Source)
	}
	if out.Analysis.IsFresher == nil || !*out.Analysis.IsFresher {
		t.Errorf("Analysis.IsFresher = %v, want true", out.Analysis.IsFresher)
	}
}

// ── Job-scope isolation ────────────────────────────────────────────────────

func TestProcessJob_FetchFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	orch := pipeline.New(workday.NewFetcherWithClient(srv.Client()), analyzer.New(analyzer.Config{}))
	_, err := orch.ProcessJob(context.Background(), model.JobSummary{URL: srv.URL + "/job/1"})
	if err == nil {
		t.Fatal("expected job-scope error for failed detail fetch")
	}
}
