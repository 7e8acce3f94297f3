package services

import (
	"strconv"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

// Member names read from an enriched OCM record.
const (
	ocmFieldID              = "ID"
	ocmFieldAddressLine1    = "AddressLine1"
	ocmFieldTown            = "Town"
	ocmFieldPostcode        = "Postcode"
	ocmFieldStateOrProvince = "StateOrProvince"
	ocmFieldLatitude        = "Latitude"
	ocmFieldLongitude       = "Longitude"
	ocmFieldPowerKW         = "PowerKW"
	ocmFieldQuantity        = "Quantity"
)

// MapOCMStation converts an enriched record into a station.
// The second return is false when the record has no usable ID.
func MapOCMStation(rec domain.EnrichedRecord) (domain.Station, bool) {
	id, ok := rec.Fields.Int(ocmFieldID)
	if !ok {
		return domain.Station{}, false
	}

	station := domain.Station{
		ExternalID: strconv.Itoa(id),
		DataSource: domain.DataSourceOCM,
		Address:    mapOCMAddress(rec.AddressInfo),
		Charging:   mapOCMCharging(rec.Connections),
	}
	if rec.Operator != nil {
		station.Operator = rec.Operator.Title
	}

	// Coordinates live in AddressInfo upstream.
	if rec.AddressInfo != nil {
		if lat, ok := rec.AddressInfo.Fields.Float(ocmFieldLatitude); ok {
			station.Latitude = &lat
		}
		if lon, ok := rec.AddressInfo.Fields.Float(ocmFieldLongitude); ok {
			station.Longitude = &lon
		}
	}
	return station, true
}

func mapOCMAddress(a *domain.EnrichedAddress) domain.StationAddress {
	if a == nil {
		return domain.StationAddress{}
	}
	addr := domain.StationAddress{
		Street:   a.Fields.String(ocmFieldAddressLine1),
		Town:     a.Fields.String(ocmFieldTown),
		Postcode: a.Fields.String(ocmFieldPostcode),
		State:    a.Fields.String(ocmFieldStateOrProvince),
	}
	if a.Country != nil {
		addr.Country = a.Country.ISOCode
	}
	return addr
}

func mapOCMCharging(connections []domain.EnrichedConnection) domain.StationCharging {
	var charging domain.StationCharging
	seen := make(map[string]bool)
	for _, c := range connections {
		quantity := 1
		if q, ok := c.Fields.Int(ocmFieldQuantity); ok && q > 0 {
			quantity = q
		}
		charging.Connections += quantity

		if kw, ok := c.Fields.Float(ocmFieldPowerKW); ok {
			if charging.MaxPowerKW == nil || kw > *charging.MaxPowerKW {
				charging.MaxPowerKW = &kw
			}
		}
		if c.Type != nil && !seen[c.Type.Title] {
			seen[c.Type.Title] = true
			charging.ConnectionTypes = append(charging.ConnectionTypes, c.Type.Title)
		}
	}
	return charging
}
