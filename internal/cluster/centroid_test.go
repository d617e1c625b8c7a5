package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-planner/internal/model"
)

func TestLocate(t *testing.T) {
	c := model.Cluster{
		Members: []model.DemandPoint{
			pt("far", 10, 13.5, 78.0),
			pt("near", 10, 12.95, 77.62),
			pt("mid", 10, 13.1, 77.7),
		},
		CentroidLat: 12.96,
		CentroidLon: 77.61,
	}

	rep, ok := Locate(c)
	require.True(t, ok)
	assert.Equal(t, "near", rep.ID)
	assert.Equal(t, 12.95, rep.Lat)
	assert.Equal(t, 77.62, rep.Lon)
}

func TestLocate_TieKeepsFirstMember(t *testing.T) {
	c := model.Cluster{
		Members:     []model.DemandPoint{pt("west", 1, 0, -1), pt("east", 1, 0, 1)},
		CentroidLat: 0,
		CentroidLon: 0,
	}
	rep, ok := Locate(c)
	require.True(t, ok)
	assert.Equal(t, "west", rep.ID)
}

func TestLocate_Empty(t *testing.T) {
	rep, ok := Locate(model.Cluster{})
	assert.False(t, ok)
	assert.Equal(t, model.DemandPoint{}, rep)
}

func TestLocate_MemberOfEveryBuiltCluster(t *testing.T) {
	for _, c := range Spatial(randomPoints(11, 80), 3000) {
		rep, ok := Locate(c)
		require.True(t, ok)
		assert.Contains(t, c.Members, rep)
	}
}

func TestCentroid(t *testing.T) {
	_, _, ok := Centroid(nil)
	assert.False(t, ok)

	lat, lon, ok := Centroid([]model.DemandPoint{pt("a", 1, 10, 10), pt("b", 3, 20, 30)})
	require.True(t, ok)
	assert.InDelta(t, 17.5, lat, 1e-9)
	assert.InDelta(t, 25, lon, 1e-9)
}

func TestCentroid_WeightedSumsOverflowFallBackToMean(t *testing.T) {
	tests := []struct {
		name    string
		members []model.DemandPoint
		lat     float64
		lon     float64
	}{
		{
			name:    "total weight overflows",
			members: []model.DemandPoint{pt("a", 1e308, 10, 20), pt("b", 1e308, 20, 40)},
			lat:     15,
			lon:     30,
		},
		{
			name:    "weighted latitude overflows",
			members: []model.DemandPoint{pt("a", 1e307, 80, 10), pt("b", 1e307, 60, 20)},
			lat:     70,
			lon:     15,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok := Centroid(tt.members)
			require.True(t, ok)
			assert.InDelta(t, tt.lat, lat, 1e-9)
			assert.InDelta(t, tt.lon, lon, 1e-9)
		})
	}
}
