package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindColumn(t *testing.T) {
	tests := []struct {
		name       string
		header     []string
		candidates []string
		expected   int
	}{
		{name: "exact", header: []string{"pincode", "lat"}, candidates: LatitudeColumns, expected: 1},
		{name: "candidate order wins", header: []string{"lat", "latitude"}, candidates: LatitudeColumns, expected: 1},
		{name: "case-insensitive", header: []string{"Pin_Code", "LAT"}, candidates: PincodeColumns, expected: 0},
		{name: "exact beats folded", header: []string{"Latitude", "lat"}, candidates: LatitudeColumns, expected: 1},
		{name: "whitespace", header: []string{"  Longitude "}, candidates: LongitudeColumns, expected: 0},
		{name: "weight upper-case", header: []string{"PROJECTED_RO"}, candidates: WeightColumns, expected: 0},
		{name: "missing", header: []string{"foo", "bar"}, candidates: LatitudeColumns, expected: -1},
		{name: "empty header", header: nil, candidates: LatitudeColumns, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindColumn(tt.header, tt.candidates))
		})
	}
}

func TestNewTable(t *testing.T) {
	tbl, err := NewTable([][]string{
		{" pincode ", "lat"},
		{"560001", "12.9"},
		{"", "  "},
		{"560002", "13.0"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pincode", "lat"}, tbl.Header)
	assert.Len(t, tbl.Rows, 2)

	_, err = NewTable(nil)
	assert.Error(t, err)
}

func TestReadTable(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "demand.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("pincode,lat,lon,projected_ro\n560001,12.97,77.59,4000\n"), 0644))
	tbl, err := ReadTable(csvPath)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)

	xlsxPath := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"pincode", "lat"}, {"560001", "12.97"}},
	})
	tbl, err = ReadTable(xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"pincode", "lat"}, tbl.Header)

	_, err = ReadTable(filepath.Join(dir, "old.xls"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "re-save")

	_, err = ReadTable(filepath.Join(dir, "data.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = ReadTable(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestParseTable(t *testing.T) {
	tbl, err := ParseTable("upload.csv", []byte("name,lat,lon\nYelahanka,13.1005,77.5963\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "lat", "lon"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)

	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {{"pincode", "lat"}, {"560001", "12.97"}},
	})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tbl, err = ParseTable("Projections.XLSX", data)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)

	_, err = ParseTable("broken.xlsx", []byte("nope"))
	assert.Error(t, err)

	_, err = ParseTable("notes.txt", []byte("x"))
	assert.Error(t, err)

	_, err = ParseTable("empty.csv", nil)
	assert.Error(t, err)
}
