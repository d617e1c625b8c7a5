package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-planner/internal/model"
)

func TestBucketFill(t *testing.T) {
	pts := []model.DemandPoint{
		pt("P1", 4000, 12.90, 77.60),
		pt("P2", 3000, 12.91, 77.61),
		pt("P3", 5000, 20.0, 80.0),
	}

	clusters := BucketFill(pts, 6000)
	require.Len(t, clusters, 2)

	// Sorted P3, P1, P2: P3 (5000) admits P1 and closes at 9000; P2 is left over.
	assert.Equal(t, []string{"P3", "P1"}, memberIDs(clusters[0]))
	assert.Equal(t, 9000.0, clusters[0].TotalWeight)
	assert.Equal(t, []string{"P2"}, memberIDs(clusters[1]))
	assert.Equal(t, 2, clusters[1].ID)
}

func TestBucketFill_TiesKeepInputOrder(t *testing.T) {
	pts := []model.DemandPoint{
		pt("a", 10, 0, 0),
		pt("b", 10, 1, 1),
		pt("c", 10, 2, 2),
	}
	clusters := BucketFill(pts, 15)
	require.Len(t, clusters, 2)
	assert.Equal(t, []string{"a", "b"}, memberIDs(clusters[0]))
	assert.Equal(t, []string{"c"}, memberIDs(clusters[1]))
}

func TestBucketFill_Empty(t *testing.T) {
	assert.Empty(t, BucketFill(nil, 100))
}

func TestBucketFill_ConservesWeight(t *testing.T) {
	pts := randomPoints(3, 90)
	clusters := BucketFill(pts, 3500)

	var in, out float64
	count := 0
	for _, p := range pts {
		in += p.Weight
	}
	for _, c := range clusters {
		out += c.TotalWeight
		count += len(c.Members)
	}
	assert.InDelta(t, in, out, 1e-6)
	assert.Equal(t, len(pts), count)
}
