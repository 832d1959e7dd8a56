package tabular

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

const xlsCharset = "utf-8"

var errNoSheets = errors.New("workbook has no sheets")

// decodeXLSX reads the first sheet (workbook order) of an OOXML workbook.
func decodeXLSX(ctx context.Context, r io.Reader) ([]model.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, decodeError(err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, decodeError(errNoSheets)
	}
	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, decodeError(err)
	}
	return fromGrid(ctx, grid)
}

// decodeXLS reads the first sheet of a legacy BIFF workbook.
func decodeXLS(ctx context.Context, r io.ReadSeeker) (records []model.RawRecord, err error) {
	// The BIFF reader panics on some truncated inputs.
	defer func() {
		if p := recover(); p != nil {
			records = nil
			err = decodeError(fmt.Errorf("corrupt workbook: %v", p))
		}
	}()

	wb, err := xls.OpenReader(r, xlsCharset)
	if err != nil {
		return nil, decodeError(err)
	}
	if wb.NumSheets() == 0 {
		return nil, decodeError(errNoSheets)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, decodeError(errNoSheets)
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		// Cells written without a ROW record report no extent; read them
		// out to at least the header width.
		n := max(row.LastCol(), width)
		cells := make([]string, n)
		for c := range cells {
			cells[c] = row.Col(c)
		}
		if i == 0 {
			width = n
		}
		grid = append(grid, cells)
	}
	return fromGrid(ctx, grid)
}

// xlsRow returns row i of sheet, or nil when the sheet has no such row.
// WorkSheet.Row dereferences the row unconditionally.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
