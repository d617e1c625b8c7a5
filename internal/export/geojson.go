package export

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/site-planner/internal/model"
	"github.com/sells-group/site-planner/internal/siting"
)

// Feature layers, stored in the "layer" property.
const (
	LayerCentroid  = "cluster_centroid"
	LayerSuggested = "suggested_site"
	LayerFacility  = "facility"
)

// FeatureCollection builds a map-ready collection: one centroid per cluster,
// one point per suggested site and one per existing facility.
func FeatureCollection(clusters []model.Cluster, sites []model.SuggestedSite, facilities []model.Facility) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}

	for _, c := range clusters {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("cluster-%d", c.ID),
			Geometry: point(c.CentroidLat, c.CentroidLon),
			Properties: map[string]any{
				"layer":        LayerCentroid,
				"cluster_id":   c.ID,
				"total_weight": c.TotalWeight,
				"members":      len(c.Members),
			},
		})
	}

	for _, s := range sites {
		if !s.Suggested {
			continue
		}
		props := map[string]any{
			"layer":             LayerSuggested,
			"cluster_id":        s.ClusterID,
			"representative_id": s.RepresentativeID,
			"total_weight":      s.TotalWeight,
			"status":            siting.SiteStatus(s),
		}
		// JSON has no infinity; a site with no facility to compare gets null.
		var dist any
		if !s.NoFacility() {
			dist = s.DistanceKM
		}
		props["distance_to_nearest_facility_km"] = dist
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         fmt.Sprintf("site-%d", s.ClusterID),
			Geometry:   point(s.RepresentativeLat, s.RepresentativeLon),
			Properties: props,
		})
	}

	for i, f := range facilities {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("facility-%d", i+1),
			Geometry: point(f.Lat, f.Lon),
			Properties: map[string]any{
				"layer":   LayerFacility,
				"name":    f.Name,
				"pincode": f.Pincode,
			},
		})
	}

	return fc
}

// MarshalGeoJSON encodes the feature collection.
func MarshalGeoJSON(clusters []model.Cluster, sites []model.SuggestedSite, facilities []model.Facility) ([]byte, error) {
	data, err := json.Marshal(FeatureCollection(clusters, sites, facilities))
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal geojson")
	}
	return data, nil
}

// point builds a GeoJSON point; GeoJSON orders coordinates lon, lat.
func point(lat, lon float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
}
