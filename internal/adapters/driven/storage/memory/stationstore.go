package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// Ensure StationStore implements the interface.
var _ driven.StationUpdater = (*StationStore)(nil)

// StationStore is an in-memory implementation of driven.StationUpdater.
type StationStore struct {
	mu       sync.RWMutex
	stations map[string]domain.Station
	counts   domain.UpdateCounts
}

// NewStationStore creates a new in-memory station store.
func NewStationStore() *StationStore {
	return &StationStore{
		stations: make(map[string]domain.Station),
	}
}

func stationKey(dataSourceKey, externalID string) string {
	return dataSourceKey + "/" + externalID
}

// UpdateStation inserts, updates or skips the station.
func (s *StationStore) UpdateStation(_ context.Context, station domain.Station, dataSourceKey string) error {
	if station.ExternalID == "" {
		return fmt.Errorf("%w: station has no external id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	station.DataSource = dataSourceKey
	key := stationKey(dataSourceKey, station.ExternalID)
	existing, ok := s.stations[key]
	if !ok {
		station.ID = uuid.NewString()
		s.stations[key] = station
		s.counts.Created++
		return nil
	}

	station.ID = existing.ID
	if reflect.DeepEqual(existing, station) {
		s.counts.Skipped++
		return nil
	}
	s.stations[key] = station
	s.counts.Updated++
	return nil
}

// Counts returns the tally since creation.
func (s *StationStore) Counts() domain.UpdateCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts
}

// LogUpdateStationCounts logs the tally.
func (s *StationStore) LogUpdateStationCounts() {
	c := s.Counts()
	logger.Info("Stations: %d created, %d updated, %d skipped", c.Created, c.Updated, c.Skipped)
}

// Get returns a stored station.
func (s *StationStore) Get(dataSourceKey, externalID string) (domain.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stations[stationKey(dataSourceKey, externalID)]
	return st, ok
}

// Len returns the number of stored stations.
func (s *StationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stations)
}
