package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var geohashCmd = &cobra.Command{
	Use:   "geohash",
	Short: "Append a Geohash column to a located-relays CSV",
	Run:   execGeohash,
}

func init() {
	geohashCmd.PersistentFlags().String("input", "", "path to input CSV containing Latitude and Longitude columns")
	geohashCmd.PersistentFlags().String("output", "", "path to output CSV (default: <input>_geohash<ext>)")
	geohashCmd.PersistentFlags().Int("precision", 7, "geohash precision")
	geohashCmd.MarkPersistentFlagRequired("input")

	viper.BindPFlag("geohash.input", geohashCmd.PersistentFlags().Lookup("input"))
	viper.BindPFlag("geohash.output", geohashCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("geohash.precision", geohashCmd.PersistentFlags().Lookup("precision"))

	rootCmd.AddCommand(geohashCmd)
}

func execGeohash(cmd *cobra.Command, args []string) {
	input := viper.GetString("geohash.input")

	output := viper.GetString("geohash.output")
	if output == "" {
		ext := filepath.Ext(input)
		output = strings.TrimSuffix(input, ext) + "_geohash" + ext
	}

	processed, err := addGeohashColumn(input, output, viper.GetInt("geohash.precision"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to add the geohash column")
	}

	log.Info().Int("rows", processed).Str("output", output).Msg("geohash column written")
}

// addGeohashColumn reads a headered CSV, encodes each row's coordinates into
// a Geohash column and writes the result to output. Rows whose coordinates
// are missing or unparsable get an empty geohash rather than failing the run.
func addGeohashColumn(input string, output string, precision int) (int, error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("input CSV %s is empty", input)
	}

	header := rows[0]
	latCol := columnIndex(header, "Latitude")
	lonCol := columnIndex(header, "Longitude")
	if latCol < 0 || lonCol < 0 {
		return 0, fmt.Errorf("input CSV must contain Latitude and Longitude columns")
	}

	hashCol := columnIndex(header, "Geohash")
	if hashCol < 0 {
		hashCol = len(header)
		header = append(header, "Geohash")
	}

	out := make([][]string, 0, len(rows))
	out = append(out, header)

	for _, row := range rows[1:] {
		for len(row) < hashCol+1 {
			row = append(row, "")
		}

		row[hashCol] = encodeRow(row, latCol, lonCol, precision)
		out = append(out, row)
	}

	f, err := os.Create(output)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(out); err != nil {
		return 0, err
	}

	return len(out) - 1, w.Error()
}

func encodeRow(row []string, latCol, lonCol, precision int) string {
	if latCol >= len(row) || lonCol >= len(row) {
		return ""
	}

	lat, err := strconv.ParseFloat(row[latCol], 64)
	if err != nil {
		return ""
	}

	lon, err := strconv.ParseFloat(row[lonCol], 64)
	if err != nil {
		return ""
	}

	return geohash.EncodeWithPrecision(lat, lon, precision)
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}

	return -1
}
