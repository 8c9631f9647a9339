package geodb

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/relaymaps/relaygeo/utils"
)

// Columns 0 and 1 are the numeric range bounds, 7 and 8 latitude and
// longitude; everything in between is unused here.
const minColumns = 9

// EnsurePresent downloads and extracts the dataset when path does not exist
// yet. The compressed artifact is removed once extraction succeeded. Any
// error here is fatal to the caller: without the dataset no lookup can work.
func EnsurePresent(_ context.Context, path string, url string) error {
	if utils.FileExists(path) {
		return nil
	}

	log.Info().Str("url", url).Str("dest", path).Msg("dataset not found, downloading")

	archive := path + ".gz"
	if err := utils.DownloadFile(archive, url); err != nil {
		return err
	}

	if err := utils.ExtractGzip(archive, path); err != nil {
		return err
	}

	return os.Remove(archive)
}

// Load parses the dataset at path into an Index, preserving the file's row
// order. Malformed rows are skipped, never fatal: a partially corrupt dataset
// degrades coverage instead of aborting the run.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.ReuseRecord = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rec, ok := parseRow(row)
		if !ok {
			log.Debug().Strs("row", row).Msg("skipping malformed dataset row")
			continue
		}

		records = append(records, rec)
	}

	log.Info().Int("ranges", len(records)).Str("path", path).Msg("dataset loaded")

	return NewIndex(records), nil
}

func parseRow(row []string) (Record, bool) {
	if len(row) < minColumns {
		return Record{}, false
	}

	start, err := strconv.ParseUint(row[0], 10, 32)
	if err != nil {
		return Record{}, false
	}

	end, err := strconv.ParseUint(row[1], 10, 32)
	if err != nil {
		return Record{}, false
	}

	lat, lon := row[7], row[8]
	if lat == "" || lon == "" {
		return Record{}, false
	}

	return Record{
		Start:     uint32(start),
		End:       uint32(end),
		Latitude:  lat,
		Longitude: lon,
	}, true
}
