package model

import (
	"math"

	"github.com/rotisserie/eris"
)

// ErrInvalidInput marks points, facilities or parameters the planner refuses
// to process.
var ErrInvalidInput = eris.New("invalid input")

// Strategy selects the clustering algorithm.
type Strategy string

const (
	// StrategySpatial grows clusters toward the nearest unassigned point.
	StrategySpatial Strategy = "spatial"
	// StrategyBucket fills clusters in descending weight order with no spatial term.
	StrategyBucket Strategy = "bucket"
)

// Params carries the per-run thresholds.
type Params struct {
	MaxWeight     float64  `json:"max_weight" yaml:"max_weight"`
	MinWeight     float64  `json:"min_weight" yaml:"min_weight"` // informational only
	MinDistanceKM float64  `json:"min_distance_km" yaml:"min_distance_km"`
	Strategy      Strategy `json:"strategy" yaml:"strategy"`
	Workers       int      `json:"workers" yaml:"workers"`
}

// Validate checks the thresholds. An empty Strategy is accepted and means spatial.
func (p Params) Validate() error {
	if math.IsNaN(p.MaxWeight) || p.MaxWeight <= 0 {
		return eris.Wrapf(ErrInvalidInput, "params: max_weight must be positive, got %v", p.MaxWeight)
	}
	if math.IsNaN(p.MinDistanceKM) || p.MinDistanceKM < 0 {
		return eris.Wrapf(ErrInvalidInput, "params: min_distance_km must be non-negative, got %v", p.MinDistanceKM)
	}
	if math.IsNaN(p.MinWeight) || p.MinWeight < 0 {
		return eris.Wrapf(ErrInvalidInput, "params: min_weight must be non-negative, got %v", p.MinWeight)
	}
	switch p.Strategy {
	case "", StrategySpatial, StrategyBucket:
	default:
		return eris.Wrapf(ErrInvalidInput, "params: unknown strategy %q", p.Strategy)
	}
	return nil
}

// ValidCoord reports whether lat/lon are finite and within range.
func ValidCoord(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidatePoints rejects demand points with unusable coordinates or weights.
func ValidatePoints(points []DemandPoint) error {
	var total float64
	for i, p := range points {
		if !ValidCoord(p.Lat, p.Lon) {
			return eris.Wrapf(ErrInvalidInput, "demand point %d (%s): invalid coordinates (%v, %v)", i, p.ID, p.Lat, p.Lon)
		}
		if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) || p.Weight < 0 {
			return eris.Wrapf(ErrInvalidInput, "demand point %d (%s): invalid weight %v", i, p.ID, p.Weight)
		}
		total += p.Weight
		if math.IsInf(total, 1) {
			return eris.Wrapf(ErrInvalidInput, "demand point %d (%s): total weight overflows", i, p.ID)
		}
	}
	return nil
}

// ValidateFacilities rejects facilities with unusable coordinates.
func ValidateFacilities(facilities []Facility) error {
	for i, f := range facilities {
		if !ValidCoord(f.Lat, f.Lon) {
			return eris.Wrapf(ErrInvalidInput, "facility %d (%s): invalid coordinates (%v, %v)", i, f.Name, f.Lat, f.Lon)
		}
	}
	return nil
}
