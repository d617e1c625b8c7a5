// Package siting decides which cluster representatives are far enough from
// existing facilities to be proposed as new sites.
package siting

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/site-planner/internal/cluster"
	"github.com/sells-group/site-planner/internal/geo"
	"github.com/sells-group/site-planner/internal/model"
)

// NearestFacility returns the facility closest to (lat, lon) and its distance
// in kilometers. The first facility wins ties. ok is false when there are no
// facilities, in which case the distance is +Inf.
func NearestFacility(lat, lon float64, facilities []model.Facility) (model.Facility, float64, bool) {
	if len(facilities) == 0 {
		return model.Facility{}, math.Inf(1), false
	}
	best := facilities[0]
	bestDist := geo.DistanceKM(lat, lon, best.Lat, best.Lon)
	for _, f := range facilities[1:] {
		if d := geo.DistanceKM(lat, lon, f.Lat, f.Lon); d < bestDist {
			best, bestDist = f, d
		}
	}
	return best, bestDist, true
}

// NearestFacilityDistance returns the distance in kilometers from (lat, lon)
// to the closest facility, or +Inf when there are none.
func NearestFacilityDistance(lat, lon float64, facilities []model.Facility) float64 {
	_, d, _ := NearestFacility(lat, lon, facilities)
	return d
}

// IsSuggested reports whether a site at distanceKM from the nearest facility
// clears the threshold. The threshold is inclusive and +Inf always clears it.
func IsSuggested(distanceKM, minDistanceKM float64) bool {
	return distanceKM >= minDistanceKM
}

// Evaluate produces the siting verdict for one cluster. ok is false only for
// a cluster without members.
func Evaluate(c model.Cluster, facilities []model.Facility, minDistanceKM float64) (model.SuggestedSite, bool) {
	rep, ok := cluster.Locate(c)
	if !ok {
		return model.SuggestedSite{}, false
	}

	nearest, dist, found := NearestFacility(rep.Lat, rep.Lon, facilities)
	site := model.SuggestedSite{
		ClusterID:         c.ID,
		RepresentativeID:  rep.ID,
		RepresentativeLat: rep.Lat,
		RepresentativeLon: rep.Lon,
		TotalWeight:       c.TotalWeight,
		DistanceKM:        dist,
		Suggested:         IsSuggested(dist, minDistanceKM),
	}
	if found {
		site.NearestFacility = nearest.Name
	}
	return site, true
}

// EvaluateAll evaluates every cluster with at most workers goroutines.
// Results keep the order of clusters; clusters without members are skipped.
func EvaluateAll(ctx context.Context, clusters []model.Cluster, facilities []model.Facility, minDistanceKM float64, workers int) ([]model.SuggestedSite, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]model.SuggestedSite, len(clusters))
	present := make([]bool, len(clusters))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range clusters {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrap(err, "siting: context cancelled")
			}
			site, ok := Evaluate(c, facilities, minDistanceKM)
			if !ok {
				zap.L().Warn("siting: skipping empty cluster", zap.Int("cluster_id", c.ID))
				return nil
			}
			results[i] = site
			present[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sites := make([]model.SuggestedSite, 0, len(clusters))
	for i, ok := range present {
		if ok {
			sites = append(sites, results[i])
		}
	}
	return sites, nil
}
