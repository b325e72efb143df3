package snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
	apperrors "github.com/slotscout/slotscout/pkg/errors"
)

var header = []string{
	"Distance",
	"NextAvailableDate",
	"Id",
	"Name",
	"CityName",
	"Address",
	"ZipCode",
	"Latitude",
	"Longitude",
}

// CSVStore persists aggregated location snapshots to a CSV file on disk.
// Each Write replaces the previous snapshot.
type CSVStore struct {
	path string
}

// NewCSVStore creates a snapshot store backed by the given file path
func NewCSVStore(path string) providers.SnapshotStore {
	return &CSVStore{path: path}
}

// Write replaces the snapshot file with the given locations
func (s *CSVStore) Write(ctx context.Context, locations []entities.Location) error {
	file, err := os.Create(s.path)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to create snapshot file %s", s.path), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return apperrors.NewInternalError("failed to write snapshot header", err)
	}

	for _, loc := range locations {
		distance := ""
		if loc.DistanceMiles != nil {
			distance = strconv.FormatFloat(*loc.DistanceMiles, 'f', -1, 64)
		}
		record := []string{
			distance,
			loc.NextAvailable.Format(time.RFC3339),
			strconv.Itoa(loc.ID),
			loc.Name,
			loc.CityName,
			loc.Address,
			loc.ZipCode,
			strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
			strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return apperrors.NewInternalError("failed to write snapshot record", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewInternalError("failed to flush snapshot", err)
	}
	return nil
}

// Read loads the most recently written snapshot
func (s *CSVStore) Read(ctx context.Context) ([]entities.Location, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to open snapshot file %s", s.path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("failed to read snapshot records: %v", err))
	}
	if len(records) == 0 {
		return nil, nil
	}

	locations := make([]entities.Location, 0, len(records)-1)
	for _, record := range records[1:] {
		loc, err := parseRecord(record)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

func parseRecord(record []string) (entities.Location, error) {
	if len(record) != len(header) {
		return entities.Location{}, apperrors.NewParseError(
			fmt.Sprintf("snapshot record has %d fields, want %d", len(record), len(header)))
	}

	var loc entities.Location
	if record[0] != "" {
		distance, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return entities.Location{}, apperrors.NewParseError("invalid distance in snapshot: " + record[0])
		}
		loc.DistanceMiles = &distance
	}

	next, err := time.Parse(time.RFC3339, record[1])
	if err != nil {
		return entities.Location{}, apperrors.NewParseError("invalid date in snapshot: " + record[1])
	}
	loc.NextAvailable = next

	id, err := strconv.Atoi(record[2])
	if err != nil {
		return entities.Location{}, apperrors.NewParseError("invalid location id in snapshot: " + record[2])
	}
	loc.ID = id
	loc.Name = record[3]
	loc.CityName = record[4]
	loc.Address = record[5]
	loc.ZipCode = record[6]

	if loc.Latitude, err = strconv.ParseFloat(record[7], 64); err != nil {
		return entities.Location{}, apperrors.NewParseError("invalid latitude in snapshot: " + record[7])
	}
	if loc.Longitude, err = strconv.ParseFloat(record[8], 64); err != nil {
		return entities.Location{}, apperrors.NewParseError("invalid longitude in snapshot: " + record[8])
	}
	return loc, nil
}
