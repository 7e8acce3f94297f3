package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
)

// Ensure DatasetWriter implements the interface.
var _ driven.DatasetWriter = (*DatasetWriter)(nil)

// DatasetWriter keeps written datasets keyed by target path.
type DatasetWriter struct {
	mu       sync.RWMutex
	datasets map[string]domain.EnrichedDataset

	// Err, when set, fails every Write.
	Err error
}

// NewDatasetWriter creates an empty writer.
func NewDatasetWriter() *DatasetWriter {
	return &DatasetWriter{datasets: make(map[string]domain.EnrichedDataset)}
}

// Write stores dataset under targetPath.
func (w *DatasetWriter) Write(_ context.Context, dataset domain.EnrichedDataset, targetPath string) error {
	if w.Err != nil {
		return w.Err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.datasets[targetPath] = dataset
	return nil
}

// Dataset returns what was written to targetPath.
func (w *DatasetWriter) Dataset(targetPath string) (domain.EnrichedDataset, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ds, ok := w.datasets[targetPath]
	return ds, ok
}
