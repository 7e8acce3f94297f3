package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

// RecordLoader reads per-record JSON files from a directory tree.
type RecordLoader struct {
	perDirectoryCap int
}

// NewRecordLoader creates a loader that reads at most perDirectoryCap files
// from any one directory. A cap below 1 means domain.DefaultPerDirectoryCap.
func NewRecordLoader(perDirectoryCap int) *RecordLoader {
	if perDirectoryCap < 1 {
		perDirectoryCap = domain.DefaultPerDirectoryCap
	}
	return &RecordLoader{perDirectoryCap: perDirectoryCap}
}

// PerDirectoryCap returns the number of files read per directory.
func (l *RecordLoader) PerDirectoryCap() int {
	return l.perDirectoryCap
}

// Load walks dir in fsys and decodes every regular file as one record.
//
// Directories are walked in lexical order. Within one directory only the
// first PerDirectoryCap files are read; the rest are skipped without error.
// A file that does not decode aborts the load with a *domain.RecordParseError.
func (l *RecordLoader) Load(ctx context.Context, fsys fs.FS, dir string) ([]domain.RawRecord, error) {
	var records []domain.RawRecord
	read := make(map[string]int)
	skipped := 0

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		parent := path.Dir(p)
		if read[parent] >= l.perDirectoryCap {
			skipped++
			logger.Debug("Skipping %s: directory cap of %d reached", p, l.perDirectoryCap)
			return nil
		}
		read[parent]++

		rec, err := readRecord(fsys, p)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load records from %s: %w", dir, err)
	}

	logger.Info("Loaded %d records from %d directories (%d skipped by cap)", len(records), len(read), skipped)
	return records, nil
}

func readRecord(fsys fs.FS, name string) (domain.RawRecord, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return domain.RawRecord{}, &domain.RecordParseError{File: name, Err: err}
	}

	var rec domain.RawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.RawRecord{}, &domain.RecordParseError{File: name, Err: err}
	}
	rec.Origin = name
	return rec, nil
}
