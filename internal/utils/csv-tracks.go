package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/tunequiz-backend/internal"
)

// CatalogEntry is one row of a catalog CSV file.
type CatalogEntry struct {
	ID   string
	Room string
	internal.TrackMetadata
}

// ReadTracksFile reads a catalog CSV file, see ReadTracks.
func ReadTracksFile(filePath string) ([]CatalogEntry, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read catalog file %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadTracks(f)
}

// ReadTracks parses rows of
//
//	id,room,artistName,trackName,previewUrl,artworkUrl,trackViewUrl
//
// An optional header row starting with "id" is skipped, as are rows with
// missing fields.
func ReadTracks(r io.Reader) ([]CatalogEntry, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse catalog as CSV: %w", err)
	}

	var entries []CatalogEntry

	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == "id" {
			continue
		}
		if len(record) < 7 || record[0] == "" || record[1] == "" {
			log.Warn().Str("module", "utils.csv").Int("line", i+1).Msg("skipping invalid catalog record")
			continue
		}

		entries = append(entries, CatalogEntry{
			ID:   record[0],
			Room: record[1],
			TrackMetadata: internal.TrackMetadata{
				ArtistName: record[2],
				TrackName:  record[3],
				PreviewURL: record[4],
				ArtworkURL: record[5],
				ViewURL:    record[6],
			},
		})
	}

	return entries, nil
}
