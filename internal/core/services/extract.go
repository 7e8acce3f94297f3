package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driving"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driving.Extractor = (*Extractor)(nil)

// Extractor orchestrates sync, load, merge and write.
type Extractor struct {
	mirror  *MirrorSynchronizer
	state   driven.MirrorState
	loader  *RecordLoader
	engine  *MergeEngine
	writer  driven.DatasetWriter
	nowFunc func() time.Time
}

// NewExtractor creates an extractor over the mirror kept by mirror in state.
func NewExtractor(
	mirror *MirrorSynchronizer,
	state driven.MirrorState,
	loader *RecordLoader,
	engine *MergeEngine,
	writer driven.DatasetWriter,
) *Extractor {
	return &Extractor{
		mirror:  mirror,
		state:   state,
		loader:  loader,
		engine:  engine,
		writer:  writer,
		nowFunc: time.Now,
	}
}

// Run executes one extraction and writes the dataset to req.TargetPath.
func (e *Extractor) Run(ctx context.Context, req driving.ExtractRequest) (*driving.ExtractResult, error) {
	if req.TargetPath == "" {
		return nil, fmt.Errorf("%w: target path is required", domain.ErrInvalidInput)
	}

	start := e.nowFunc()
	dataset, result, err := e.Enrich(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Section("Writing dataset")
	if err := e.writer.Write(ctx, dataset, req.TargetPath); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	result.Duration = e.nowFunc().Sub(start)
	logger.Info("[%s] Wrote %d records to %s in %s", result.RunID, result.Records, req.TargetPath, result.Duration)
	return result, nil
}

// Enrich runs the pipeline up to, but not including, the write.
func (e *Extractor) Enrich(
	ctx context.Context,
	req driving.ExtractRequest,
) (domain.EnrichedDataset, *driving.ExtractResult, error) {
	start := e.nowFunc()
	result := &driving.ExtractResult{RunID: uuid.NewString()}
	logger.Debug("Starting extraction run %s", result.RunID)

	if req.Offline {
		logger.Section("Using existing mirror")
		if err := e.mirror.EnsureHealthy(); err != nil {
			return nil, nil, err
		}
		result.Sync = domain.SyncOutcome{Action: domain.SyncSkipped}
	} else {
		logger.Section("Synchronising mirror")
		outcome, err := e.mirror.Sync(ctx)
		if err != nil {
			return nil, nil, err
		}
		result.Sync = outcome
		logger.Info("Mirror %s (tool %s)", outcome.Action, outcome.ToolVersion)
	}

	layout := e.state.Layout()
	fsys := e.state.FS()

	logger.Section("Loading reference data")
	tables, err := LoadReferenceFile(fsys, layout.ReferencePath())
	if err != nil {
		return nil, nil, fmt.Errorf("load reference data: %w", err)
	}
	result.ConnectionTypes = tables.ConnectionTypes.Len()
	result.Countries = tables.Countries.Len()
	result.Operators = tables.Operators.Len()

	loaded := logger.Timed("Loading records")
	records, err := e.loader.Load(ctx, fsys, layout.DataPath)
	loaded()
	if err != nil {
		return nil, nil, err
	}

	merged := logger.Timed("Merging records")
	dataset, err := e.engine.MergeAll(ctx, records, tables)
	merged()
	if err != nil {
		return nil, nil, err
	}
	result.Records = len(dataset)
	result.Duration = e.nowFunc().Sub(start)

	return dataset, result, nil
}
