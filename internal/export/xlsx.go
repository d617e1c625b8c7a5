package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/site-planner/internal/model"
)

// Sheet names in the workbook export.
const (
	SheetSuggested = "Suggested"
	SheetClusters  = "Clusters"
)

var (
	siteHeader = []string{
		"cluster_id", "representative_id", "representative_lat", "representative_lon",
		"total_weight", "nearest_facility", "distance_to_nearest_facility_km",
		"suggested", "status", "geohash",
	}
	memberHeader = []string{
		"cluster_id", "id", "lat", "lon", "weight", "cluster_total_weight", "geohash",
	}
)

// WriteXLSX writes both exports as sheets of one workbook.
func WriteXLSX(w io.Writer, sites []model.SuggestedSite, clusters []model.Cluster) error {
	f := xlsx.NewFile()

	suggested, err := f.AddSheet(SheetSuggested)
	if err != nil {
		return eris.Wrap(err, "export: add suggested sheet")
	}
	addHeader(suggested, siteHeader)
	for _, r := range SiteRows(sites) {
		row := suggested.AddRow()
		row.AddCell().SetInt(r.ClusterID)
		row.AddCell().SetString(r.RepresentativeID)
		row.AddCell().SetFloat(r.RepresentativeLat)
		row.AddCell().SetFloat(r.RepresentativeLon)
		row.AddCell().SetFloat(r.TotalWeight)
		row.AddCell().SetString(r.NearestFacility)
		if r.DistanceKM != nil {
			row.AddCell().SetFloat(*r.DistanceKM)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetBool(r.Suggested)
		row.AddCell().SetString(r.Status)
		row.AddCell().SetString(r.Geohash)
	}

	members, err := f.AddSheet(SheetClusters)
	if err != nil {
		return eris.Wrap(err, "export: add clusters sheet")
	}
	addHeader(members, memberHeader)
	for _, r := range MemberRows(clusters) {
		row := members.AddRow()
		row.AddCell().SetInt(r.ClusterID)
		row.AddCell().SetString(r.ID)
		row.AddCell().SetFloat(r.Lat)
		row.AddCell().SetFloat(r.Lon)
		row.AddCell().SetFloat(r.Weight)
		row.AddCell().SetFloat(r.ClusterTotalWeight)
		row.AddCell().SetString(r.Geohash)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addHeader(sheet *xlsx.Sheet, names []string) {
	row := sheet.AddRow()
	for _, n := range names {
		row.AddCell().SetString(n)
	}
}
