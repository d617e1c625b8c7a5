package cluster

import (
	"math"

	"github.com/sells-group/site-planner/internal/geo"
	"github.com/sells-group/site-planner/internal/model"
)

// accumulator keeps running sums so the centroid can be refreshed after each
// admission without rescanning the members.
type accumulator struct {
	n       int
	total   float64
	sumWLat float64
	sumWLon float64
	sumLat  float64
	sumLon  float64
}

func newAccumulator() *accumulator {
	return &accumulator{}
}

func (a *accumulator) add(p model.DemandPoint) {
	a.n++
	a.total += p.Weight
	a.sumWLat += p.Weight * p.Lat
	a.sumWLon += p.Weight * p.Lon
	a.sumLat += p.Lat
	a.sumLon += p.Lon
}

// centroid is the weight-weighted mean, or the plain mean when the members
// carry no weight at all or the weighted sums overflow. A single member is returned exactly.
func (a *accumulator) centroid() (float64, float64) {
	switch {
	case a.n == 0:
		return 0, 0
	case a.n == 1:
		return a.sumLat, a.sumLon
	case a.total > 0:
		lat, lon := a.sumWLat/a.total, a.sumWLon/a.total
		if finite(lat) && finite(lon) {
			return lat, lon
		}
	}
	// Zero total weight, or weighted sums beyond float64 range.
	return a.sumLat / float64(a.n), a.sumLon / float64(a.n)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (a *accumulator) cluster(id int, pts []model.DemandPoint, members []int) model.Cluster {
	c := model.Cluster{
		ID:          id,
		Members:     make([]model.DemandPoint, 0, len(members)),
		TotalWeight: a.total,
	}
	for _, idx := range members {
		c.Members = append(c.Members, pts[idx])
	}
	c.CentroidLat, c.CentroidLon = a.centroid()
	return c
}

// Centroid computes the centroid of an arbitrary member set the same way the
// clustering strategies do. ok is false for an empty set.
func Centroid(members []model.DemandPoint) (lat, lon float64, ok bool) {
	if len(members) == 0 {
		return 0, 0, false
	}
	acc := newAccumulator()
	for _, m := range members {
		acc.add(m)
	}
	lat, lon = acc.centroid()
	return lat, lon, true
}

// Locate returns the member closest to the cluster centroid, which serves as
// the cluster's real-world representative site. The first member wins ties.
// ok is false only for a cluster without members.
func Locate(c model.Cluster) (model.DemandPoint, bool) {
	if len(c.Members) == 0 {
		return model.DemandPoint{}, false
	}
	best := c.Members[0]
	bestDist := geo.DistanceKM(c.CentroidLat, c.CentroidLon, best.Lat, best.Lon)
	for _, m := range c.Members[1:] {
		if d := geo.DistanceKM(c.CentroidLat, c.CentroidLon, m.Lat, m.Lon); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best, true
}
