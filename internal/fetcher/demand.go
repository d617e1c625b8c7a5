package fetcher

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-planner/internal/model"
)

// Header candidates, tried in order.
var (
	FacilityNameColumns = []string{"workshop_name", "name", "dealer_name", "workshop", "dealer"}
	PincodeColumns      = []string{"pincode", "pin", "pin_code", "postalcode", "postal_code"}
	LatitudeColumns     = []string{"latitude", "lat", "y"}
	LongitudeColumns    = []string{"longitude", "lon", "lng", "long", "x"}
	WeightColumns       = []string{
		"F30_ROs", "F30_RO", "F30_RO_projection",
		"projected_ro", "projected_ros", "projected_ro_count",
		"f30_ro", "f30_ro_projection", "f30_projection",
	}
)

// LoadStats counts what happened to the rows of one table.
type LoadStats struct {
	Rows          int `json:"rows"`
	Kept          int `json:"kept"`
	Dropped       int `json:"dropped"`        // missing or out-of-range coordinates
	ZeroedWeights int `json:"zeroed_weights"` // missing, non-numeric or negative weight
}

// column names a required field and the headers that can satisfy it.
type column struct {
	label      string
	candidates []string
}

// resolve finds every required column, reporting all misses at once.
func resolve(header []string, cols []column) ([]int, error) {
	idx := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		idx[i] = FindColumn(header, c.candidates)
		if idx[i] < 0 {
			missing = append(missing, c.label)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("fetcher: could not detect columns: %s (found %s)",
			strings.Join(missing, ", "), strings.Join(header, ", "))
	}
	return idx, nil
}

// LoadDemand converts a projections table into demand points. Rows whose
// coordinates are missing, non-numeric or out of range are dropped; weights
// that are missing, non-numeric or negative become 0.
func LoadDemand(t *Table) ([]model.DemandPoint, LoadStats, error) {
	idx, err := resolve(t.Header, []column{
		{"demand pincode", PincodeColumns},
		{"demand latitude", LatitudeColumns},
		{"demand longitude", LongitudeColumns},
		{"demand projected RO", WeightColumns},
	})
	if err != nil {
		return nil, LoadStats{}, err
	}

	stats := LoadStats{Rows: len(t.Rows)}
	points := make([]model.DemandPoint, 0, len(t.Rows))
	for _, row := range t.Rows {
		lat, lon, ok := coords(cell(row, idx[1]), cell(row, idx[2]))
		if !ok {
			stats.Dropped++
			continue
		}

		weight := parseNumber(cell(row, idx[3]))
		if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
			weight = 0
			stats.ZeroedWeights++
		}

		points = append(points, model.DemandPoint{
			ID:     cell(row, idx[0]),
			Lat:    lat,
			Lon:    lon,
			Weight: weight,
		})
	}
	stats.Kept = len(points)

	if stats.Dropped > 0 || stats.ZeroedWeights > 0 {
		zap.L().Warn("fetcher: demand rows coerced",
			zap.Int("dropped", stats.Dropped),
			zap.Int("zeroed_weights", stats.ZeroedWeights),
		)
	}
	return points, stats, nil
}

// LoadFacilities converts a facility table into facilities. The pincode
// column is optional; rows with unusable coordinates are dropped.
func LoadFacilities(t *Table) ([]model.Facility, LoadStats, error) {
	idx, err := resolve(t.Header, []column{
		{"facility name", FacilityNameColumns},
		{"facility latitude", LatitudeColumns},
		{"facility longitude", LongitudeColumns},
	})
	if err != nil {
		return nil, LoadStats{}, err
	}
	pinIdx := FindColumn(t.Header, PincodeColumns)

	stats := LoadStats{Rows: len(t.Rows)}
	facilities := make([]model.Facility, 0, len(t.Rows))
	for _, row := range t.Rows {
		lat, lon, ok := coords(cell(row, idx[1]), cell(row, idx[2]))
		if !ok {
			stats.Dropped++
			continue
		}
		facilities = append(facilities, model.Facility{
			Name:    cell(row, idx[0]),
			Pincode: cell(row, pinIdx),
			Lat:     lat,
			Lon:     lon,
		})
	}
	stats.Kept = len(facilities)

	if stats.Dropped > 0 {
		zap.L().Warn("fetcher: facility rows dropped", zap.Int("dropped", stats.Dropped))
	}
	return facilities, stats, nil
}

// LoadDemandFile reads and converts a projections file.
func LoadDemandFile(path string) ([]model.DemandPoint, LoadStats, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, LoadStats{}, err
	}
	return LoadDemand(t)
}

// LoadFacilitiesFile reads and converts a facility file.
func LoadFacilitiesFile(path string) ([]model.Facility, LoadStats, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, LoadStats{}, err
	}
	return LoadFacilities(t)
}

func coords(latStr, lonStr string) (float64, float64, bool) {
	lat := parseNumber(latStr)
	lon := parseNumber(lonStr)
	if !model.ValidCoord(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

// thousands matches a number grouped with commas, e.g. 12,345.6.
var thousands = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// parseNumber parses a spreadsheet number. Commas are accepted only as
// thousands separators, so a decimal comma like "1,5" is unparseable.
// Anything unparseable yields NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if thousands.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
