package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// Merge resolves the references of one record against tables.
//
// Connection types are resolved first, then the address country, then the
// operator. A nil reference ID passes through unresolved; a present ID with no
// table entry fails with a *domain.UnresolvedReferenceError naming the record's
// origin. The record itself is not modified.
func Merge(record domain.RawRecord, tables *domain.ReferenceTables) (domain.EnrichedRecord, error) {
	types, err := resolveConnectionTypes(record.Connections, tables.ConnectionTypes)
	if err != nil {
		return domain.EnrichedRecord{}, withOrigin(err, record.Origin)
	}

	out := domain.EnrichedRecord{
		Origin:     record.Origin,
		OperatorID: record.OperatorID,
		Absent:     record.Absent,
		Fields:     record.Fields.Clone(),
	}

	if len(record.Connections) > 0 {
		out.Connections = make([]domain.EnrichedConnection, len(record.Connections))
		for i, c := range record.Connections {
			out.Connections[i] = domain.EnrichedConnection{Connection: c}
			if c.ConnectionTypeID != nil {
				t := types[*c.ConnectionTypeID]
				out.Connections[i].Type = &t
			}
		}
	}

	if record.AddressInfo != nil {
		address := &domain.EnrichedAddress{AddressInfo: *record.AddressInfo}
		if id := record.AddressInfo.CountryID; id != nil {
			country, err := tables.Countries.Lookup(*id)
			if err != nil {
				return domain.EnrichedRecord{}, withOrigin(err, record.Origin)
			}
			address.Country = &country
		}
		out.AddressInfo = address
	}

	if id := record.OperatorID; id != nil {
		operator, err := tables.Operators.Lookup(*id)
		if err != nil {
			return domain.EnrichedRecord{}, withOrigin(err, record.Origin)
		}
		out.Operator = &operator
	}

	return out, nil
}

// resolveConnectionTypes looks up each distinct non-nil type ID once,
// in order of first appearance.
func resolveConnectionTypes(
	connections []domain.Connection,
	table *domain.ReferenceTable[domain.ConnectionType],
) (map[int]domain.ConnectionType, error) {
	types := make(map[int]domain.ConnectionType)
	for _, c := range connections {
		if c.ConnectionTypeID == nil {
			continue
		}
		id := *c.ConnectionTypeID
		if _, seen := types[id]; seen {
			continue
		}
		t, err := table.Lookup(id)
		if err != nil {
			return nil, err
		}
		types[id] = t
	}
	return types, nil
}

func withOrigin(err error, origin string) error {
	var unresolved *domain.UnresolvedReferenceError
	if errors.As(err, &unresolved) {
		cp := *unresolved
		cp.Origin = origin
		return &cp
	}
	return err
}

// MergeEngine merges a batch of records, optionally in parallel.
type MergeEngine struct {
	workers int
}

// NewMergeEngine creates an engine using up to workers goroutines.
// Fewer than 1 worker means a sequential merge.
func NewMergeEngine(workers int) *MergeEngine {
	if workers < 1 {
		workers = 1
	}
	return &MergeEngine{workers: workers}
}

// MergeAll merges records in order. The dataset has one entry per record at the
// same index. On failure no dataset is returned and the error is the one of the
// lowest-indexed failing record.
func (e *MergeEngine) MergeAll(
	ctx context.Context,
	records []domain.RawRecord,
	tables *domain.ReferenceTables,
) (domain.EnrichedDataset, error) {
	dataset := make(domain.EnrichedDataset, len(records))

	if e.workers == 1 {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			merged, err := Merge(rec, tables)
			if err != nil {
				return nil, fmt.Errorf("merge record %d: %w", i, err)
			}
			dataset[i] = merged
		}
		return dataset, nil
	}

	logger.Debug("Merging %d records with %d workers", len(records), e.workers)

	errs := make([]error, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			merged, err := Merge(records[i], tables)
			if err != nil {
				// Keep going so the lowest failing index is known.
				errs[i] = err
				return nil
			}
			dataset[i] = merged
			return nil
		})
	}
	waitErr := g.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("merge record %d: %w", i, err)
		}
	}
	if waitErr != nil {
		return nil, waitErr
	}
	return dataset, nil
}
