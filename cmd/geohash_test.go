package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, rows [][]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "relays.csv")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))

	return path
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	return rows
}

func TestAddGeohashColumn(t *testing.T) {
	input := writeCSV(t, [][]string{
		{"Relay URL", "Latitude", "Longitude"},
		{"wss://relay.example.com", "57.64911", "10.40744"},
		{"wss://broken.example.com", "", ""},
		{"wss://bogus.example.com", "north", "east"},
	})

	output := filepath.Join(t.TempDir(), "out.csv")

	processed, err := addGeohashColumn(input, output, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)

	rows := readCSVFile(t, output)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Relay URL", "Latitude", "Longitude", "Geohash"}, rows[0])
	assert.Equal(t, []string{"wss://relay.example.com", "57.64911", "10.40744", "u4pruyd"}, rows[1])

	// unusable coordinates produce an empty geohash, not an error
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "", rows[3][3])
}

func TestAddGeohashColumnOverwritesExisting(t *testing.T) {
	input := writeCSV(t, [][]string{
		{"Relay URL", "Latitude", "Longitude", "Geohash"},
		{"wss://relay.example.com", "57.64911", "10.40744", "stale"},
	})

	output := filepath.Join(t.TempDir(), "out.csv")

	processed, err := addGeohashColumn(input, output, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	rows := readCSVFile(t, output)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Relay URL", "Latitude", "Longitude", "Geohash"}, rows[0])
	assert.Equal(t, "u4pru", rows[1][3])
}

func TestAddGeohashColumnMissingCoordinates(t *testing.T) {
	input := writeCSV(t, [][]string{
		{"Relay URL", "Lat", "Lon"},
		{"wss://relay.example.com", "1", "2"},
	})

	output := filepath.Join(t.TempDir(), "out.csv")

	_, err := addGeohashColumn(input, output, 7)
	assert.Error(t, err)
}

func TestAddGeohashColumnEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := addGeohashColumn(path, filepath.Join(t.TempDir(), "out.csv"), 7)
	assert.Error(t, err)
}
