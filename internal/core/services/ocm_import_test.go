package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ocm-extractor/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

func TestMapOCMStation(t *testing.T) {
	tables := loadTestTables(t)
	merged, err := Merge(decodeRecord(t, "data/DE/1/100.json", recordBerlin), tables)
	require.NoError(t, err)

	station, ok := MapOCMStation(merged)

	require.True(t, ok)
	assert.Equal(t, "100", station.ExternalID)
	assert.Equal(t, domain.DataSourceOCM, station.DataSource)
	assert.Equal(t, "Acme", station.Operator)
	assert.Equal(t, domain.StationAddress{
		Street:   "Alexanderplatz 1",
		Town:     "Berlin",
		Postcode: "10178",
		State:    "Berlin",
		Country:  "DE",
	}, station.Address)
	require.NotNil(t, station.Latitude)
	assert.InDelta(t, 52.52, *station.Latitude, 1e-9)
	require.NotNil(t, station.Longitude)
	assert.InDelta(t, 13.41, *station.Longitude, 1e-9)

	// Quantity 2 plus one unquantified connection.
	assert.Equal(t, 3, station.Charging.Connections)
	require.NotNil(t, station.Charging.MaxPowerKW)
	assert.InDelta(t, 22.0, *station.Charging.MaxPowerKW, 1e-9)
	assert.Equal(t, []string{"Type 2 (Socket Only)"}, station.Charging.ConnectionTypes)
}

func TestMapOCMStation_Unresolved(t *testing.T) {
	tables := loadTestTables(t)
	merged, err := Merge(decodeRecord(t, "data/DE/2/200.json", recordHamburg), tables)
	require.NoError(t, err)

	station, ok := MapOCMStation(merged)

	require.True(t, ok)
	assert.Empty(t, station.Operator)
	assert.Empty(t, station.Address.Country)
	assert.Nil(t, station.Latitude)
}

func TestMapOCMStation_NoID(t *testing.T) {
	_, ok := MapOCMStation(domain.EnrichedRecord{Fields: domain.Object{}})
	assert.False(t, ok)
}

func TestOCMStationImporter_Import(t *testing.T) {
	f := newExtractorFixture(1)
	stations := memory.NewStationStore()
	importer := NewOCMStationImporter(f.extractor, stations)
	ctx := context.Background()

	counts, err := importer.Import(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, domain.UpdateCounts{Created: 2}, counts)

	// A second offline run changes nothing.
	counts, err = importer.Import(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, domain.UpdateCounts{Created: 2, Skipped: 2}, counts)
	assert.Equal(t, 1, f.tool.Count("clone"))
	assert.Equal(t, 0, f.tool.Count("pull"))

	st, ok := stations.Get(domain.DataSourceOCM, "100")
	require.True(t, ok)
	assert.Equal(t, "Acme", st.Operator)
	assert.Equal(t, domain.DataSourceOCM, importer.DataSource())
}

func TestOCMStationImporter_OfflineWithoutMirror(t *testing.T) {
	f := newExtractorFixture(1)
	importer := NewOCMStationImporter(f.extractor, memory.NewStationStore())

	_, err := importer.Import(context.Background(), false)

	assert.ErrorIs(t, err, domain.ErrMirrorMissing)
}
