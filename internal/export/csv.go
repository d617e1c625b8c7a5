// Package export writes planning results as CSV, XLSX and GeoJSON.
package export

import (
	"encoding/csv"
	"io"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-planner/internal/model"
	"github.com/sells-group/site-planner/internal/siting"
)

// GeohashPrecision gives cells of roughly 150 m, enough to join exports with
// other postal-code level datasets.
const GeohashPrecision = 7

// SiteRow is one line of the suggested locations export.
type SiteRow struct {
	ClusterID         int      `csv:"cluster_id"`
	RepresentativeID  string   `csv:"representative_id"`
	RepresentativeLat float64  `csv:"representative_lat"`
	RepresentativeLon float64  `csv:"representative_lon"`
	TotalWeight       float64  `csv:"total_weight"`
	NearestFacility   string   `csv:"nearest_facility"`
	DistanceKM        *float64 `csv:"distance_to_nearest_facility_km"` // empty when there is no facility
	Suggested         bool     `csv:"suggested"`
	Status            string   `csv:"status"`
	Geohash           string   `csv:"geohash"`
}

// MemberRow is one cluster member in the cluster detail export.
type MemberRow struct {
	ClusterID          int     `csv:"cluster_id"`
	ID                 string  `csv:"id"`
	Lat                float64 `csv:"lat"`
	Lon                float64 `csv:"lon"`
	Weight             float64 `csv:"weight"`
	ClusterTotalWeight float64 `csv:"cluster_total_weight"`
	Geohash            string  `csv:"geohash"`
}

// SiteRows flattens sites into export rows.
func SiteRows(sites []model.SuggestedSite) []SiteRow {
	rows := make([]SiteRow, 0, len(sites))
	for _, s := range sites {
		r := SiteRow{
			ClusterID:         s.ClusterID,
			RepresentativeID:  s.RepresentativeID,
			RepresentativeLat: s.RepresentativeLat,
			RepresentativeLon: s.RepresentativeLon,
			TotalWeight:       s.TotalWeight,
			NearestFacility:   s.NearestFacility,
			Suggested:         s.Suggested,
			Status:            siting.SiteStatus(s),
			Geohash:           geohash.EncodeWithPrecision(s.RepresentativeLat, s.RepresentativeLon, GeohashPrecision),
		}
		if !s.NoFacility() {
			d := s.DistanceKM
			r.DistanceKM = &d
		}
		rows = append(rows, r)
	}
	return rows
}

// MemberRows flattens clusters into one row per member.
func MemberRows(clusters []model.Cluster) []MemberRow {
	var rows []MemberRow
	for _, c := range clusters {
		for _, m := range c.Members {
			rows = append(rows, MemberRow{
				ClusterID:          c.ID,
				ID:                 m.ID,
				Lat:                m.Lat,
				Lon:                m.Lon,
				Weight:             m.Weight,
				ClusterTotalWeight: c.TotalWeight,
				Geohash:            geohash.EncodeWithPrecision(m.Lat, m.Lon, GeohashPrecision),
			})
		}
	}
	return rows
}

// WriteSitesCSV writes the suggested locations export. The header is written
// even when there are no sites.
func WriteSitesCSV(w io.Writer, sites []model.SuggestedSite) error {
	return writeCSV(w, SiteRow{}, SiteRows(sites))
}

// WriteClustersCSV writes the cluster detail export.
func WriteClustersCSV(w io.Writer, clusters []model.Cluster) error {
	return writeCSV(w, MemberRow{}, MemberRows(clusters))
}

func writeCSV[T any](w io.Writer, header T, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}
