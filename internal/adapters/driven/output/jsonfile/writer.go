// Package jsonfile writes enriched datasets as a single record-keyed JSON object.
package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// Ensure Writer implements the interface.
var _ driven.DatasetWriter = (*Writer)(nil)

// Writer replaces the target file atomically: the dataset is written to a
// temporary file in the same directory, synced, then renamed over the target.
type Writer struct {
	perm os.FileMode
}

// NewWriter creates a writer producing files with mode 0644.
func NewWriter() *Writer {
	return &Writer{perm: 0o644}
}

// Write emits {"0": {...}, "1": {...}} with keys in dataset order.
func (w *Writer) Write(ctx context.Context, dataset domain.EnrichedDataset, targetPath string) (err error) {
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(targetPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := encode(ctx, tmp, dataset); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Chmod(w.perm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		return fmt.Errorf("replace %s: %w", targetPath, err)
	}

	logger.Debug("Wrote %d records to %s", len(dataset), targetPath)
	return nil
}

// encode writes the record-keyed object. Keys are the dense positions 0..n-1.
func encode(ctx context.Context, out io.Writer, dataset domain.EnrichedDataset) error {
	bw := bufio.NewWriter(out)
	if err := bw.WriteByte('{'); err != nil {
		return err
	}
	for i, rec := range dataset {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %d (%s): %w", i, rec.Origin, err)
		}
		if i > 0 {
			if err := bw.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(strconv.Quote(strconv.Itoa(i)) + ":"); err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('}'); err != nil {
		return err
	}
	return bw.Flush()
}
