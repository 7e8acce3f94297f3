package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Member names of a per-record file that reference the lookup tables.
const (
	FieldConnections      = "Connections"
	FieldConnectionTypeID = "ConnectionTypeID"
	FieldAddressInfo      = "AddressInfo"
	FieldCountryID        = "CountryID"
	FieldOperatorID       = "OperatorID"
)

var errNotObject = errors.New("not a JSON object")

// RawRecord is one station entry as published upstream.
// Its identity is the file it was read from; the upstream ID is carried in Fields.
type RawRecord struct {
	// Origin is the path of the file the record was read from.
	Origin string

	// OperatorID references the Operators table. Nil when null or absent.
	OperatorID *int

	// AddressInfo is nil when the member is null or absent.
	AddressInfo *AddressInfo

	Connections []Connection

	// Absent lists the reference members the source did not carry.
	// They are left out when the record is written back.
	Absent Members

	// Fields holds every other top-level member.
	Fields Object
}

// AddressInfo is the address sub-object of a record.
type AddressInfo struct {
	// CountryID references the Countries table. Nil when null or absent.
	CountryID *int

	Absent Members
	Fields Object
}

// Connection is one entry of a record's connection list.
type Connection struct {
	// ConnectionTypeID references the ConnectionTypes table. Nil when null or absent.
	ConnectionTypeID *int

	Absent Members
	Fields Object
}

// UnmarshalJSON decodes a record, separating the reference members from the rest.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return errNotObject
	}
	var fields Object
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	absent := absentMembers(fields, FieldOperatorID, FieldAddressInfo, FieldConnections)
	operatorID, err := takeOptionalInt(fields, FieldOperatorID)
	if err != nil {
		return fmt.Errorf("%s: %w", FieldOperatorID, err)
	}

	var address *AddressInfo
	if raw, ok := fields[FieldAddressInfo]; ok {
		delete(fields, FieldAddressInfo)
		if !isNull(raw) {
			address = &AddressInfo{}
			if err := json.Unmarshal(raw, address); err != nil {
				return fmt.Errorf("%s: %w", FieldAddressInfo, err)
			}
		}
	}

	var connections []Connection
	if raw, ok := fields[FieldConnections]; ok {
		delete(fields, FieldConnections)
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &connections); err != nil {
				return fmt.Errorf("%s: %w", FieldConnections, err)
			}
		}
	}

	r.OperatorID = operatorID
	r.AddressInfo = address
	r.Connections = connections
	r.Absent = absent
	r.Fields = fields
	return nil
}

// MarshalJSON re-assembles the record as published.
func (r RawRecord) MarshalJSON() ([]byte, error) {
	out := r.Fields.Clone()
	if err := out.setUnlessAbsent(r.Absent, FieldOperatorID, r.OperatorID); err != nil {
		return nil, err
	}
	if err := out.setUnlessAbsent(r.Absent, FieldAddressInfo, r.AddressInfo); err != nil {
		return nil, err
	}
	if err := out.setUnlessAbsent(r.Absent, FieldConnections, r.Connections); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an address, separating CountryID from the rest.
func (a *AddressInfo) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return errNotObject
	}
	var fields Object
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	absent := absentMembers(fields, FieldCountryID)
	countryID, err := takeOptionalInt(fields, FieldCountryID)
	if err != nil {
		return fmt.Errorf("%s: %w", FieldCountryID, err)
	}
	a.CountryID = countryID
	a.Absent = absent
	a.Fields = fields
	return nil
}

// MarshalJSON re-assembles the address as published.
func (a AddressInfo) MarshalJSON() ([]byte, error) {
	out, err := a.object()
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (a AddressInfo) object() (Object, error) {
	out := a.Fields.Clone()
	if err := out.setUnlessAbsent(a.Absent, FieldCountryID, a.CountryID); err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalJSON decodes a connection, separating ConnectionTypeID from the rest.
func (c *Connection) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return errNotObject
	}
	var fields Object
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	absent := absentMembers(fields, FieldConnectionTypeID)
	typeID, err := takeOptionalInt(fields, FieldConnectionTypeID)
	if err != nil {
		return fmt.Errorf("%s: %w", FieldConnectionTypeID, err)
	}
	c.ConnectionTypeID = typeID
	c.Absent = absent
	c.Fields = fields
	return nil
}

// MarshalJSON re-assembles the connection as published.
func (c Connection) MarshalJSON() ([]byte, error) {
	out, err := c.object()
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (c Connection) object() (Object, error) {
	out := c.Fields.Clone()
	if err := out.setUnlessAbsent(c.Absent, FieldConnectionTypeID, c.ConnectionTypeID); err != nil {
		return nil, err
	}
	return out, nil
}

func absentMembers(fields Object, names ...string) Members {
	var absent Members
	for _, name := range names {
		if _, ok := fields[name]; !ok {
			absent = append(absent, name)
		}
	}
	return absent
}
