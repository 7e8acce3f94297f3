// Package csvfile reads header-keyed rows from comma-separated files.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
	"github.com/custodia-labs/ocm-extractor/internal/logger"
)

var _ driven.CSVReader = (*Reader)(nil)

// Reader decodes files as UTF-8, replacing invalid sequences with U+FFFD and
// dropping a leading byte order mark.
type Reader struct {
	comma rune
}

// NewReader creates a reader for comma-delimited files.
func NewReader() *Reader {
	return &Reader{comma: ','}
}

// ReadFile returns one map per data row, keyed by the trimmed header row.
// Short rows are padded with empty values and long rows truncated.
func (r *Reader) ReadFile(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	logger.Debug("Read %d rows from %s", len(rows), path)
	return rows, nil
}

// Read parses CSV from in.
func (r *Reader) Read(in io.Reader) ([]map[string]string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(in, decoder))
	reader.Comma = r.comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file: no header row found")
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var rows []map[string]string
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				row[h] = fields[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
