// Package cluster groups weighted demand points into capacity-bounded clusters.
//
// Both strategies share the same soft cap: a cluster keeps admitting members
// while its running total is below the cap, so the final total can exceed the
// cap by at most the last member's weight. Ties are broken by input order,
// which makes every run over the same input reproducible.
package cluster

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-planner/internal/geo"
	"github.com/sells-group/site-planner/internal/model"
)

// Build validates the input and clusters it with the strategy named in params.
// Cluster IDs are assigned 1..n in creation order.
func Build(points []model.DemandPoint, params model.Params) ([]model.Cluster, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := model.ValidatePoints(points); err != nil {
		return nil, eris.Wrap(err, "cluster: validate points")
	}

	switch params.Strategy {
	case model.StrategyBucket:
		return BucketFill(points, params.MaxWeight), nil
	default:
		return Spatial(points, params.MaxWeight), nil
	}
}

// Spatial runs greedy nearest-neighbor accretion. Each cluster is seeded with
// the heaviest unassigned point (earliest input index on ties) and grows by
// repeatedly taking the unassigned point closest to its current weighted
// centroid (earliest input index on ties) until the running total reaches
// maxWeight. Points must already be validated. Runs in O(n²).
func Spatial(points []model.DemandPoint, maxWeight float64) []model.Cluster {
	pts := slices.Clone(points)

	// Ascending input indices; scanning in order with strict comparisons
	// yields the lowest index among ties.
	remaining := make([]int, len(pts))
	for i := range remaining {
		remaining[i] = i
	}

	clusters := make([]model.Cluster, 0)
	for len(remaining) > 0 {
		seedPos := heaviest(pts, remaining)
		seed := remaining[seedPos]
		remaining = slices.Delete(remaining, seedPos, seedPos+1)

		acc := newAccumulator()
		acc.add(pts[seed])
		members := []int{seed}

		for acc.total < maxWeight && len(remaining) > 0 {
			lat, lon := acc.centroid()
			pos := nearest(pts, remaining, lat, lon)
			idx := remaining[pos]
			remaining = slices.Delete(remaining, pos, pos+1)

			acc.add(pts[idx])
			members = append(members, idx)
		}

		clusters = append(clusters, acc.cluster(len(clusters)+1, pts, members))
	}
	return clusters
}

// heaviest returns the position in remaining of the point with the largest weight.
func heaviest(pts []model.DemandPoint, remaining []int) int {
	best := 0
	for pos := 1; pos < len(remaining); pos++ {
		if pts[remaining[pos]].Weight > pts[remaining[best]].Weight {
			best = pos
		}
	}
	return best
}

// nearest returns the position in remaining of the point closest to (lat, lon).
func nearest(pts []model.DemandPoint, remaining []int, lat, lon float64) int {
	best := 0
	bestDist := geo.DistanceKM(lat, lon, pts[remaining[0]].Lat, pts[remaining[0]].Lon)
	for pos := 1; pos < len(remaining); pos++ {
		p := pts[remaining[pos]]
		if d := geo.DistanceKM(lat, lon, p.Lat, p.Lon); d < bestDist {
			best, bestDist = pos, d
		}
	}
	return best
}
