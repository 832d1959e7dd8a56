// Package tabular decodes uploaded CSV and spreadsheet files into raw records
// keyed by the file's header row.
//
// Decoding is format dispatch only: header cells are kept verbatim, values are
// not trimmed and nothing is validated. Row normalisation belongs to the
// leads package.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/leadsplit/internal/domain/model"
)

// Supported file extensions.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
)

const utf8BOM = "\ufeff"

// SupportedExtensions lists the extensions Decode accepts, in display order.
var SupportedExtensions = []string{ExtCSV, ExtXLSX, ExtXLS}

// IsSupported reports whether ext (with leading dot, any case) can be decoded.
func IsSupported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range SupportedExtensions {
		if s == ext {
			return true
		}
	}
	return false
}

// Decode reads r according to ext and returns one record per data row.
// Parse failures are reported as model.ErrDecode wrapping the parser error.
func Decode(ctx context.Context, r io.Reader, ext string) ([]model.RawRecord, error) {
	switch strings.ToLower(ext) {
	case ExtCSV:
		return decodeCSV(ctx, r)
	case ExtXLSX:
		return decodeXLSX(ctx, r)
	case ExtXLS:
		// BIFF parsing needs random access.
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, decodeError(err)
		}
		return decodeXLS(ctx, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedExtension, ext)
	}
}

func decodeCSV(ctx context.Context, r io.Reader) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.RawRecord{}, nil
	}
	if err != nil {
		return nil, decodeError(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	records := make([]model.RawRecord, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decodeError(err)
		}
		records = append(records, toRecord(header, row))
	}
	return records, nil
}

// fromGrid converts a header-first grid of cells into records. Rows with no
// non-empty cell are skipped, matching how spreadsheet readers treat blanks.
func fromGrid(ctx context.Context, grid [][]string) ([]model.RawRecord, error) {
	records := make([]model.RawRecord, 0)
	if len(grid) == 0 {
		return records, nil
	}
	header := grid[0]
	for _, row := range grid[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blank(row) {
			continue
		}
		records = append(records, toRecord(header, row))
	}
	return records, nil
}

func toRecord(header, row []string) model.RawRecord {
	rec := make(model.RawRecord, len(header))
	for i, key := range header {
		if key == "" || i >= len(row) {
			continue
		}
		rec[key] = row[i]
	}
	return rec
}

func blank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func decodeError(err error) error {
	return fmt.Errorf("%w: %v", model.ErrDecode, err)
}
