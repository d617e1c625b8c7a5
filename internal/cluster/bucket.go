package cluster

import (
	"cmp"
	"slices"

	"github.com/sells-group/site-planner/internal/model"
)

// BucketFill walks points in descending weight order (input order on ties)
// and fills one cluster at a time until its total reaches maxWeight. It has
// no spatial term, so members of one cluster can be far apart; it exists for
// comparison with Spatial on the same input.
func BucketFill(points []model.DemandPoint, maxWeight float64) []model.Cluster {
	pts := slices.Clone(points)

	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(pts[b].Weight, pts[a].Weight)
	})

	clusters := make([]model.Cluster, 0)
	var acc *accumulator
	var members []int
	for _, idx := range order {
		if acc == nil {
			acc = newAccumulator()
			members = nil
		}
		acc.add(pts[idx])
		members = append(members, idx)
		if acc.total >= maxWeight {
			clusters = append(clusters, acc.cluster(len(clusters)+1, pts, members))
			acc = nil
		}
	}
	if acc != nil {
		clusters = append(clusters, acc.cluster(len(clusters)+1, pts, members))
	}
	return clusters
}
