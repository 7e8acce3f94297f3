package domain

import "time"

// Data source keys used when updating the station table.
const (
	DataSourceOCM   = "OCM"
	DataSourceFRGOV = "FRGOV"
)

// Station is the normalised form every pipeline maps its records onto.
type Station struct {
	// ID is assigned by the station store.
	ID string

	// ExternalID is the identifier used by the data source.
	ExternalID string

	DataSource string
	Operator   string

	Latitude  *float64
	Longitude *float64

	Address  StationAddress
	Charging StationCharging

	UpdatedAt time.Time
}

// StationAddress is the postal address of a station.
type StationAddress struct {
	Street   string
	Town     string
	Postcode string
	State    string
	Country  string
}

// StationCharging summarises the charge points of a station.
type StationCharging struct {
	Connections     int
	MaxPowerKW      *float64
	ConnectionTypes []string
}

// UpdateCounts tallies the outcome of a batch of station updates.
type UpdateCounts struct {
	Created int
	Updated int
	Skipped int
}

// Total returns the number of stations seen.
func (c UpdateCounts) Total() int {
	return c.Created + c.Updated + c.Skipped
}
