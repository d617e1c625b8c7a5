package siting

import (
	"math"

	"github.com/sells-group/site-planner/internal/model"
)

// Site status constants used by exports and map layers.
const (
	StatusSuggested  = "suggested"
	StatusTooClose   = "too_close"
	StatusNoFacility = "no_facility"
)

// Status labels a site by its distance to the nearest facility.
// Rules:
//   - no_facility: there was no facility to measure against (always suggested)
//   - suggested: distance >= minDistanceKM
//   - too_close: distance < minDistanceKM
func Status(distanceKM, minDistanceKM float64) string {
	if math.IsInf(distanceKM, 1) {
		return StatusNoFacility
	}
	if IsSuggested(distanceKM, minDistanceKM) {
		return StatusSuggested
	}
	return StatusTooClose
}

// SiteStatus labels an already evaluated site.
func SiteStatus(s model.SuggestedSite) string {
	switch {
	case s.NoFacility():
		return StatusNoFacility
	case s.Suggested:
		return StatusSuggested
	default:
		return StatusTooClose
	}
}
