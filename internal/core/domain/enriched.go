package domain

import (
	"encoding/json"
)

// EnrichedRecord is a RawRecord whose references have been resolved.
// Unresolved parts (null IDs) are carried as published.
type EnrichedRecord struct {
	Origin      string
	Connections []EnrichedConnection
	AddressInfo *EnrichedAddress

	// Operator is the resolved entity; nil when OperatorID is nil.
	Operator   *Operator
	OperatorID *int

	// Absent is copied from the raw record.
	Absent Members

	Fields Object
}

// EnrichedConnection is a connection merged with its connection type.
type EnrichedConnection struct {
	Connection

	// Type is nil when ConnectionTypeID is nil.
	Type *ConnectionType
}

// EnrichedAddress is an address merged with its country.
type EnrichedAddress struct {
	AddressInfo

	// Country is nil when CountryID is nil.
	Country *Country
}

// EnrichedDataset is the merge output, in ingestion order.
type EnrichedDataset []EnrichedRecord

// MarshalJSON emits the record with OperatorID replaced by the operator entity.
// Reference members absent from the raw record stay absent; a null connection
// list is written as empty.
func (r EnrichedRecord) MarshalJSON() ([]byte, error) {
	out := r.Fields.Clone()
	var operator any = r.OperatorID
	if r.Operator != nil {
		operator = r.Operator
	}
	if err := out.setUnlessAbsent(r.Absent, FieldOperatorID, operator); err != nil {
		return nil, err
	}
	if err := out.setUnlessAbsent(r.Absent, FieldAddressInfo, r.AddressInfo); err != nil {
		return nil, err
	}
	connections := r.Connections
	if connections == nil {
		connections = []EnrichedConnection{}
	}
	if err := out.setUnlessAbsent(r.Absent, FieldConnections, connections); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// MarshalJSON emits the union of the connection and its type's members,
// the type winning on conflicts. The type's ID is the join key and is not copied.
func (c EnrichedConnection) MarshalJSON() ([]byte, error) {
	out, err := c.Connection.object()
	if err != nil {
		return nil, err
	}
	if c.Type != nil {
		ref, err := ObjectOf(c.Type)
		if err != nil {
			return nil, err
		}
		out = out.Merge(ref.Without("ID"))
	}
	return json.Marshal(out)
}

// MarshalJSON emits the union of the address and its country's members,
// the country winning on conflicts. The country's ID is not copied.
func (a EnrichedAddress) MarshalJSON() ([]byte, error) {
	out, err := a.AddressInfo.object()
	if err != nil {
		return nil, err
	}
	if a.Country != nil {
		ref, err := ObjectOf(a.Country)
		if err != nil {
			return nil, err
		}
		out = out.Merge(ref.Without("ID"))
	}
	return json.Marshal(out)
}
