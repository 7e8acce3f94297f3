package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// Columns of the consolidated IRVE export.
const (
	frColumnStationID   = "id_station_itinerance"
	frColumnOperator    = "nom_operateur"
	frColumnAddress     = "adresse_station"
	frColumnPostcode    = "consolidated_code_postal"
	frColumnTown        = "consolidated_commune"
	frColumnLatitude    = "consolidated_latitude"
	frColumnLongitude   = "consolidated_longitude"
	frColumnCoordinates = "coordonneesXY"
	frColumnPointCount  = "nbre_pdc"
	frColumnPowerKW     = "puissance_nominale"
	frColumnUpdatedAt   = "date_maj"
)

// frPlugColumns maps the boolean plug columns to connection type names.
var frPlugColumns = []struct {
	column string
	name   string
}{
	{"prise_type_ef", "Type E"},
	{"prise_type_2", "Type 2"},
	{"prise_type_combo_ccs", "CCS"},
	{"prise_type_chademo", "CHAdeMO"},
	{"prise_type_autre", "Other"},
}

// MapFranceStation converts one CSV row into a station.
// The second return is false when the row has no station ID.
func MapFranceStation(row map[string]string) (domain.Station, bool) {
	id := strings.TrimSpace(row[frColumnStationID])
	if id == "" {
		return domain.Station{}, false
	}

	station := domain.Station{
		ExternalID: id,
		DataSource: domain.DataSourceFRGOV,
		Operator:   strings.TrimSpace(row[frColumnOperator]),
		Address:    mapFranceAddress(row),
		Charging:   mapFranceCharging(row),
	}
	station.Latitude, station.Longitude = mapFranceCoordinates(row)

	if ts, err := time.Parse(time.DateOnly, strings.TrimSpace(row[frColumnUpdatedAt])); err == nil {
		station.UpdatedAt = ts
	}
	return station, true
}

func mapFranceAddress(row map[string]string) domain.StationAddress {
	return domain.StationAddress{
		Street:   strings.TrimSpace(row[frColumnAddress]),
		Town:     strings.TrimSpace(row[frColumnTown]),
		Postcode: strings.TrimSpace(row[frColumnPostcode]),
		Country:  "FR",
	}
}

func mapFranceCharging(row map[string]string) domain.StationCharging {
	var charging domain.StationCharging
	if n, err := strconv.Atoi(strings.TrimSpace(row[frColumnPointCount])); err == nil && n > 0 {
		charging.Connections = n
	}
	if kw, ok := parseFrenchFloat(row[frColumnPowerKW]); ok {
		charging.MaxPowerKW = &kw
	}
	for _, plug := range frPlugColumns {
		if parseFrenchBool(row[plug.column]) {
			charging.ConnectionTypes = append(charging.ConnectionTypes, plug.name)
		}
	}
	return charging
}

// mapFranceCoordinates prefers the consolidated columns and falls back to the
// "[lon, lat]" pair of coordonneesXY.
func mapFranceCoordinates(row map[string]string) (*float64, *float64) {
	lat, latOK := parseFrenchFloat(row[frColumnLatitude])
	lon, lonOK := parseFrenchFloat(row[frColumnLongitude])
	if latOK && lonOK {
		return &lat, &lon
	}

	var pair []float64
	if err := json.Unmarshal([]byte(row[frColumnCoordinates]), &pair); err == nil && len(pair) == 2 {
		return &pair[1], &pair[0]
	}
	return nil, nil
}

func parseFrenchFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseFrenchBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "oui", "vrai":
		return true
	default:
		return false
	}
}
