package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ReferenceKind identifies one of the lookup tables.
type ReferenceKind string

// Reference kinds, named after their collection in the reference document.
const (
	KindConnectionType ReferenceKind = "ConnectionTypes"
	KindCountry        ReferenceKind = "Countries"
	KindOperator       ReferenceKind = "Operators"
)

// String returns the collection name.
func (k ReferenceKind) String() string {
	return string(k)
}

func (k ReferenceKind) sentinel() error {
	switch k {
	case KindConnectionType:
		return ErrUnresolvedConnectionType
	case KindCountry:
		return ErrUnresolvedCountry
	case KindOperator:
		return ErrUnresolvedOperator
	default:
		return ErrNotFound
	}
}

// ConnectionType describes a plug/socket standard.
type ConnectionType struct {
	ID             int     `json:"ID"`
	Title          string  `json:"Title"`
	FormalName     *string `json:"FormalName"`
	IsDiscontinued *bool   `json:"IsDiscontinued"`
	IsObsolete     *bool   `json:"IsObsolete"`

	// Fields holds the entity as published, including undeclared members.
	Fields Object `json:"-"`
}

// Country is the country an address belongs to.
type Country struct {
	ID            int     `json:"ID"`
	ISOCode       string  `json:"ISOCode"`
	ContinentCode *string `json:"ContinentCode"`
	Title         string  `json:"Title"`

	Fields Object `json:"-"`
}

// Operator is the network or company running a station.
type Operator struct {
	ID                    int             `json:"ID"`
	Title                 string          `json:"Title"`
	WebsiteURL            *string         `json:"WebsiteURL"`
	Comments              *string         `json:"Comments"`
	PhonePrimaryContact   *string         `json:"PhonePrimaryContact"`
	PhoneSecondaryContact *string         `json:"PhoneSecondaryContact"`
	IsPrivateIndividual   *bool           `json:"IsPrivateIndividual"`
	AddressInfo           json.RawMessage `json:"AddressInfo"`
	BookingURL            *string         `json:"BookingURL"`
	ContactEmail          *string         `json:"ContactEmail"`
	FaultReportEmail      *string         `json:"FaultReportEmail"`
	IsRestrictedEdit      *bool           `json:"IsRestrictedEdit"`

	Fields Object `json:"-"`
}

// UnmarshalJSON decodes the typed members and keeps the full member set.
func (c *ConnectionType) UnmarshalJSON(data []byte) error {
	type plain ConnectionType
	var p plain
	fields, err := decodeEntity(data, &p)
	if err != nil {
		return err
	}
	*c = ConnectionType(p)
	c.Fields = fields
	return nil
}

// MarshalJSON writes the entity as published when it was decoded, and the
// typed members otherwise.
func (c ConnectionType) MarshalJSON() ([]byte, error) {
	if c.Fields != nil {
		return json.Marshal(c.Fields)
	}
	type plain ConnectionType
	return json.Marshal(plain(c))
}

// UnmarshalJSON decodes the typed members and keeps the full member set.
func (c *Country) UnmarshalJSON(data []byte) error {
	type plain Country
	var p plain
	fields, err := decodeEntity(data, &p)
	if err != nil {
		return err
	}
	*c = Country(p)
	c.Fields = fields
	return nil
}

// MarshalJSON mirrors ConnectionType.MarshalJSON.
func (c Country) MarshalJSON() ([]byte, error) {
	if c.Fields != nil {
		return json.Marshal(c.Fields)
	}
	type plain Country
	return json.Marshal(plain(c))
}

// UnmarshalJSON decodes the typed members and keeps the full member set.
func (o *Operator) UnmarshalJSON(data []byte) error {
	type plain Operator
	var p plain
	fields, err := decodeEntity(data, &p)
	if err != nil {
		return err
	}
	*o = Operator(p)
	o.Fields = fields
	return nil
}

// MarshalJSON mirrors ConnectionType.MarshalJSON.
func (o Operator) MarshalJSON() ([]byte, error) {
	if o.Fields != nil {
		return json.Marshal(o.Fields)
	}
	type plain Operator
	return json.Marshal(plain(o))
}

func decodeEntity(data []byte, typed any) (Object, error) {
	if isNull(data) {
		return nil, errNotObject
	}
	if err := json.Unmarshal(data, typed); err != nil {
		return nil, err
	}
	var fields Object
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ReferenceTable is an immutable ID-keyed lookup built once per run.
type ReferenceTable[T any] struct {
	kind    ReferenceKind
	ids     []int
	entries map[int]T
}

// NewReferenceTable indexes entities by the ID returned from id.
// Two entities sharing an ID is an error; nothing is overwritten.
func NewReferenceTable[T any](kind ReferenceKind, entities []T, id func(T) int) (*ReferenceTable[T], error) {
	t := &ReferenceTable[T]{
		kind:    kind,
		ids:     make([]int, 0, len(entities)),
		entries: make(map[int]T, len(entities)),
	}
	for _, e := range entities {
		key := id(e)
		if _, exists := t.entries[key]; exists {
			return nil, &DuplicateReferenceIDError{Collection: kind.String(), ID: key}
		}
		t.entries[key] = e
		t.ids = append(t.ids, key)
	}
	sort.Ints(t.ids)
	return t, nil
}

// Kind returns the collection the table was built from.
func (t *ReferenceTable[T]) Kind() ReferenceKind {
	return t.kind
}

// Len returns the number of entries.
func (t *ReferenceTable[T]) Len() int {
	return len(t.ids)
}

// IDs returns the keys in ascending order.
func (t *ReferenceTable[T]) IDs() []int {
	out := make([]int, len(t.ids))
	copy(out, t.ids)
	return out
}

// Lookup returns the entity for id, or an *UnresolvedReferenceError.
func (t *ReferenceTable[T]) Lookup(id int) (T, error) {
	e, ok := t.entries[id]
	if !ok {
		var zero T
		return zero, &UnresolvedReferenceError{Kind: t.kind, ID: id}
	}
	return e, nil
}

// ReferenceTables groups the three lookups used by the merge engine.
type ReferenceTables struct {
	ConnectionTypes *ReferenceTable[ConnectionType]
	Countries       *ReferenceTable[Country]
	Operators       *ReferenceTable[Operator]
}

// String summarises table sizes for logs.
func (r *ReferenceTables) String() string {
	return fmt.Sprintf("%d connection types, %d countries, %d operators",
		r.ConnectionTypes.Len(), r.Countries.Len(), r.Operators.Len())
}
