package services

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// LoadReferenceFile opens name in fsys and builds the reference tables from it.
func LoadReferenceFile(fsys fs.FS, name string) (*domain.ReferenceTables, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open reference data: %w", err)
	}
	defer f.Close()

	tables, err := LoadReferenceTables(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tables, nil
}

// LoadReferenceTables parses a reference document holding the ConnectionTypes,
// Countries and Operators collections into three ID-keyed tables.
func LoadReferenceTables(r io.Reader) (*domain.ReferenceTables, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidReferenceData, err)
	}

	connectionTypes, err := buildTable(doc, domain.KindConnectionType,
		func(c domain.ConnectionType) int { return c.ID })
	if err != nil {
		return nil, err
	}
	countries, err := buildTable(doc, domain.KindCountry,
		func(c domain.Country) int { return c.ID })
	if err != nil {
		return nil, err
	}
	operators, err := buildTable(doc, domain.KindOperator,
		func(o domain.Operator) int { return o.ID })
	if err != nil {
		return nil, err
	}

	tables := &domain.ReferenceTables{
		ConnectionTypes: connectionTypes,
		Countries:       countries,
		Operators:       operators,
	}
	logger.Info("Loaded reference data: %s", tables)
	return tables, nil
}

// buildTable decodes one named collection. Every entity must carry an ID.
func buildTable[T any](
	doc map[string]json.RawMessage,
	kind domain.ReferenceKind,
	id func(T) int,
) (*domain.ReferenceTable[T], error) {
	raw, ok := doc[kind.String()]
	if !ok {
		return nil, fmt.Errorf("%w: missing collection %s", domain.ErrInvalidReferenceData, kind)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidReferenceData, kind, err)
	}

	entities := make([]T, 0, len(items))
	for i, item := range items {
		var key struct {
			ID *int `json:"ID"`
		}
		if err := json.Unmarshal(item, &key); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", domain.ErrInvalidReferenceData, kind, i, err)
		}
		if key.ID == nil {
			return nil, fmt.Errorf("%w: %s[%d] has no ID", domain.ErrInvalidReferenceData, kind, i)
		}

		var entity T
		if err := json.Unmarshal(item, &entity); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %w", domain.ErrInvalidReferenceData, kind, i, err)
		}
		entities = append(entities, entity)
	}

	return domain.NewReferenceTable(kind, entities, id)
}
