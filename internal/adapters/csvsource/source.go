// Package csvsource reads the review export from a CSV file.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"review_dashboard/internal/domain"
)

type Source struct {
	path string
}

func New(path string) *Source { return &Source{path: path} }

func (s *Source) Name() string { return "csv:" + s.path }

// Version is derived from the file's size and modification time.
func (s *Source) Version(ctx context.Context) (string, error) {
	st, err := os.Stat(s.path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d", st.ModTime().UnixNano(), st.Size()), nil
}

func (s *Source) ReadRows(ctx context.Context) ([]domain.RawRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(ctx, f)
}

// Read parses a headed CSV stream. Every row carries every header column:
// short rows get "" for their trailing columns, surplus cells are ignored.
func Read(ctx context.Context, r io.Reader) ([]domain.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	var rows []domain.RawRow
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		row := make(domain.RawRow, len(header))
		for i, col := range header {
			if _, dup := row[col]; dup {
				continue
			}
			cell := ""
			if i < len(rec) {
				cell = rec[i]
			}
			row[col] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}
