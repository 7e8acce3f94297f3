package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

var _ driven.StationUpdater = (*StationUpdater)(nil)

// StationUpdater upserts stations and tallies what it did.
type StationUpdater struct {
	store *Store

	mu     sync.Mutex
	counts domain.UpdateCounts
}

// UpdateStation inserts a new station, updates a changed one, or skips an
// unchanged one. Stations are keyed by data source and external ID.
func (u *StationUpdater) UpdateStation(ctx context.Context, station domain.Station, dataSourceKey string) error {
	if station.ExternalID == "" {
		return fmt.Errorf("%w: station has no external id", domain.ErrInvalidInput)
	}
	station.DataSource = dataSourceKey

	fingerprint, err := stationFingerprint(station)
	if err != nil {
		return fmt.Errorf("fingerprinting station: %w", err)
	}
	types, err := json.Marshal(connectionTypes(station))
	if err != nil {
		return fmt.Errorf("marshalling connection types: %w", err)
	}

	tx, err := u.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id, existing string
	err = tx.QueryRowContext(ctx,
		"SELECT id, fingerprint FROM stations WHERE data_source = ? AND external_id = ?",
		dataSourceKey, station.ExternalID,
	).Scan(&id, &existing)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stations (
				id, data_source, external_id, operator, latitude, longitude,
				street, town, postcode, state, country,
				connections, max_power_kw, connection_types, source_updated_at, fingerprint
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			uuid.NewString(), dataSourceKey, station.ExternalID, station.Operator,
			nullFloat(station.Latitude), nullFloat(station.Longitude),
			station.Address.Street, station.Address.Town, station.Address.Postcode,
			station.Address.State, station.Address.Country,
			station.Charging.Connections, nullFloat(station.Charging.MaxPowerKW), string(types),
			nullTime(station.UpdatedAt), fingerprint,
		)
		if err != nil {
			return fmt.Errorf("inserting station: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing station: %w", err)
		}
		u.tally(func(c *domain.UpdateCounts) { c.Created++ })
		return nil

	case err != nil:
		return fmt.Errorf("querying station: %w", err)

	case existing == fingerprint:
		u.tally(func(c *domain.UpdateCounts) { c.Skipped++ })
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE stations SET
			operator = ?, latitude = ?, longitude = ?,
			street = ?, town = ?, postcode = ?, state = ?, country = ?,
			connections = ?, max_power_kw = ?, connection_types = ?,
			source_updated_at = ?, fingerprint = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		station.Operator, nullFloat(station.Latitude), nullFloat(station.Longitude),
		station.Address.Street, station.Address.Town, station.Address.Postcode,
		station.Address.State, station.Address.Country,
		station.Charging.Connections, nullFloat(station.Charging.MaxPowerKW), string(types),
		nullTime(station.UpdatedAt), fingerprint, id,
	)
	if err != nil {
		return fmt.Errorf("updating station: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing station: %w", err)
	}
	u.tally(func(c *domain.UpdateCounts) { c.Updated++ })
	return nil
}

// Counts returns the tally since the updater was created.
func (u *StationUpdater) Counts() domain.UpdateCounts {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts
}

// LogUpdateStationCounts logs the tally.
func (u *StationUpdater) LogUpdateStationCounts() {
	c := u.Counts()
	logger.Info("Stations: %d created, %d updated, %d skipped (%d total)",
		c.Created, c.Updated, c.Skipped, c.Total())
}

// GetStation returns the stored station, or domain.ErrNotFound.
func (u *StationUpdater) GetStation(ctx context.Context, dataSourceKey, externalID string) (*domain.Station, error) {
	row := u.store.db.QueryRowContext(ctx, `
		SELECT id, data_source, external_id, operator, latitude, longitude,
			street, town, postcode, state, country,
			connections, max_power_kw, connection_types, source_updated_at
		FROM stations WHERE data_source = ? AND external_id = ?
	`, dataSourceKey, externalID)

	var (
		st        domain.Station
		lat, lon  sql.NullFloat64
		maxPower  sql.NullFloat64
		types     string
		updatedAt sql.NullTime
	)
	err := row.Scan(
		&st.ID, &st.DataSource, &st.ExternalID, &st.Operator, &lat, &lon,
		&st.Address.Street, &st.Address.Town, &st.Address.Postcode, &st.Address.State, &st.Address.Country,
		&st.Charging.Connections, &maxPower, &types, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning station: %w", err)
	}

	st.Latitude = floatPtr(lat)
	st.Longitude = floatPtr(lon)
	st.Charging.MaxPowerKW = floatPtr(maxPower)
	if err := json.Unmarshal([]byte(types), &st.Charging.ConnectionTypes); err != nil {
		return nil, fmt.Errorf("unmarshalling connection types: %w", err)
	}
	if len(st.Charging.ConnectionTypes) == 0 {
		st.Charging.ConnectionTypes = nil
	}
	if updatedAt.Valid {
		st.UpdatedAt = updatedAt.Time
	}
	return &st, nil
}

// CountStations returns the number of rows stored for dataSourceKey.
func (u *StationUpdater) CountStations(ctx context.Context, dataSourceKey string) (int, error) {
	var n int
	err := u.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stations WHERE data_source = ?", dataSourceKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting stations: %w", err)
	}
	return n, nil
}

func (u *StationUpdater) tally(f func(*domain.UpdateCounts)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	f(&u.counts)
}

// stationFingerprint hashes every persisted field except the row ID.
func stationFingerprint(st domain.Station) (string, error) {
	st.ID = ""
	st.UpdatedAt = st.UpdatedAt.UTC()
	data, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func connectionTypes(st domain.Station) []string {
	if st.Charging.ConnectionTypes == nil {
		return []string{}
	}
	return st.Charging.ConnectionTypes
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
