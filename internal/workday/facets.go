package workday

// Workday tenants are configured independently and expose inconsistent facet
// key names for the same logical location filter. When the listing API rejects
// a request with HTTP 400, the fetcher escalates through known historical
// variants in decreasing likelihood order instead of requiring per-portal
// configuration. The ladder only moves forward; each variant is attempted at
// most once per portal run.

// FacetState identifies which location filter variant is currently applied.
type FacetState int

const (
	// FacetNone applies no location filter.
	FacetNone FacetState = iota
	// FacetCountry applies the standard "locationCountry" facet.
	FacetCountry
	// FacetCountryAlt applies the tenant-specific "Location_Country" facet.
	FacetCountryAlt
	// FacetHierarchy applies the "locationHierarchy1" facet.
	FacetHierarchy
	// FacetExhausted means every applicable variant has been rejected.
	FacetExhausted
)

func (s FacetState) String() string {
	switch s {
	case FacetNone:
		return "none"
	case FacetCountry:
		return "locationCountry"
	case FacetCountryAlt:
		return "Location_Country"
	case FacetHierarchy:
		return "locationHierarchy1"
	case FacetExhausted:
		return "exhausted"
	}
	return "unknown"
}

// InitialFacet picks the starting filter: the standard country facet when a
// country id was supplied, otherwise no filter.
func InitialFacet(countryID string) FacetState {
	if countryID != "" {
		return FacetCountry
	}
	return FacetNone
}

// NextFacet advances the fallback ladder after a rejection, skipping variants
// whose identifier was not supplied. The ladder never reverts. A rejection
// with no filter applied cannot be fixed by adding one, so FacetNone goes
// straight to FacetExhausted.
func NextFacet(s FacetState, countryID, hierarchyID string) FacetState {
	for {
		switch s {
		case FacetCountry:
			s = FacetCountryAlt
			if countryID != "" {
				return s
			}
		case FacetCountryAlt:
			s = FacetHierarchy
			if hierarchyID != "" {
				return s
			}
		default:
			return FacetExhausted
		}
	}
}

// AppliedFacets builds the appliedFacets payload for the current state.
// The previous variant's key is never carried over — the map is rebuilt on
// every transition.
func AppliedFacets(s FacetState, countryID, hierarchyID string) map[string][]string {
	facets := map[string][]string{}
	switch s {
	case FacetCountry:
		facets["locationCountry"] = []string{countryID}
	case FacetCountryAlt:
		facets["Location_Country"] = []string{countryID}
	case FacetHierarchy:
		facets["locationHierarchy1"] = []string{hierarchyID}
	}
	return facets
}
