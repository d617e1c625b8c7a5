package model

import (
	"encoding/json"
	"math"
)

// DemandPoint is a weighted location, typically the projected service-request
// volume of one postal code.
type DemandPoint struct {
	ID     string  `json:"id" yaml:"id"`
	Lat    float64 `json:"lat" yaml:"lat"`
	Lon    float64 `json:"lon" yaml:"lon"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Facility is an existing service location used as a proximity reference.
type Facility struct {
	Name    string  `json:"name" yaml:"name"`
	Pincode string  `json:"pincode,omitempty" yaml:"pincode,omitempty"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lon     float64 `json:"lon" yaml:"lon"`
}

// Cluster is a capacity-bounded group of demand points. Clusters are built once
// and never mutated afterward.
type Cluster struct {
	ID          int           `json:"cluster_id" yaml:"cluster_id"`
	Members     []DemandPoint `json:"members" yaml:"members"`
	TotalWeight float64       `json:"total_weight" yaml:"total_weight"`
	CentroidLat float64       `json:"centroid_lat" yaml:"centroid_lat"`
	CentroidLon float64       `json:"centroid_lon" yaml:"centroid_lon"`
}

// SuggestedSite is the siting verdict for one cluster.
type SuggestedSite struct {
	ClusterID         int     `json:"cluster_id" yaml:"cluster_id"`
	RepresentativeID  string  `json:"representative_id" yaml:"representative_id"`
	RepresentativeLat float64 `json:"representative_lat" yaml:"representative_lat"`
	RepresentativeLon float64 `json:"representative_lon" yaml:"representative_lon"`
	TotalWeight       float64 `json:"total_weight" yaml:"total_weight"`
	NearestFacility   string  `json:"nearest_facility,omitempty" yaml:"nearest_facility,omitempty"`
	DistanceKM        float64 `json:"distance_to_nearest_facility_km" yaml:"distance_to_nearest_facility_km"`
	Suggested         bool    `json:"suggested" yaml:"suggested"`
}

// NoFacility reports whether the site had no facility to measure against.
func (s SuggestedSite) NoFacility() bool {
	return math.IsInf(s.DistanceKM, 1)
}

// MarshalJSON encodes an infinite distance as null since JSON has no infinity.
func (s SuggestedSite) MarshalJSON() ([]byte, error) {
	type alias SuggestedSite
	out := struct {
		alias
		DistanceKM *float64 `json:"distance_to_nearest_facility_km"`
	}{alias: alias(s)}
	if !s.NoFacility() {
		d := s.DistanceKM
		out.DistanceKM = &d
	}
	return json.Marshal(out)
}
