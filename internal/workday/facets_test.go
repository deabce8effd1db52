package workday_test

import (
	"testing"

	"jobmate/workday-discovery/internal/workday"
)

func TestInitialFacet(t *testing.T) {
	if got := workday.InitialFacet("abc123"); got != workday.FacetCountry {
		t.Errorf("InitialFacet with country id = %v, want FacetCountry", got)
	}
	if got := workday.InitialFacet(""); got != workday.FacetNone {
		t.Errorf("InitialFacet without country id = %v, want FacetNone", got)
	}
}

func TestNextFacet_FullLadder(t *testing.T) {
	// Both identifiers supplied: country → countryAlt → hierarchy → exhausted.
	s := workday.FacetCountry
	s = workday.NextFacet(s, "c", "h")
	if s != workday.FacetCountryAlt {
		t.Fatalf("after first rejection: %v, want FacetCountryAlt", s)
	}
	s = workday.NextFacet(s, "c", "h")
	if s != workday.FacetHierarchy {
		t.Fatalf("after second rejection: %v, want FacetHierarchy", s)
	}
	s = workday.NextFacet(s, "c", "h")
	if s != workday.FacetExhausted {
		t.Fatalf("after third rejection: %v, want FacetExhausted", s)
	}
}

func TestNextFacet_SkipsUnavailableVariants(t *testing.T) {
	// No hierarchy id: the ladder skips FacetHierarchy entirely.
	s := workday.NextFacet(workday.FacetCountryAlt, "c", "")
	if s != workday.FacetExhausted {
		t.Errorf("NextFacet(FacetCountryAlt, no hierarchy) = %v, want FacetExhausted", s)
	}
}

func TestNextFacet_NoFilterIsTerminal(t *testing.T) {
	// A 400 with no filter applied cannot be fixed by adding one.
	s := workday.NextFacet(workday.FacetNone, "", "h")
	if s != workday.FacetExhausted {
		t.Errorf("NextFacet(FacetNone) = %v, want FacetExhausted", s)
	}
}

func TestAppliedFacets_Keys(t *testing.T) {
	cases := []struct {
		state workday.FacetState
		key   string
		value string
	}{
		{workday.FacetCountry, "locationCountry", "c1"},
		{workday.FacetCountryAlt, "Location_Country", "c1"},
		{workday.FacetHierarchy, "locationHierarchy1", "h1"},
	}
	for _, c := range cases {
		facets := workday.AppliedFacets(c.state, "c1", "h1")
		if len(facets) != 1 {
			t.Errorf("AppliedFacets(%v) has %d keys, want exactly 1", c.state, len(facets))
			continue
		}
		got, ok := facets[c.key]
		if !ok || len(got) != 1 || got[0] != c.value {
			t.Errorf("AppliedFacets(%v) = %v, want {%s: [%s]}", c.state, facets, c.key, c.value)
		}
	}

	if facets := workday.AppliedFacets(workday.FacetNone, "c1", "h1"); len(facets) != 0 {
		t.Errorf("AppliedFacets(FacetNone) = %v, want empty", facets)
	}
}
