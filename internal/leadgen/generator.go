package leadgen

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/leadsplit/internal/domain/leads"
	"github.com/okian/leadsplit/pkg/logger"
)

const sheetName = "Leads"

var (
	firstNames = []string{"Asha", "Ben", "Chen", "Dana", "Eli", "Farah", "Gus", "Hana", "Ivan", "Jo"}
	noteWords  = []string{"call back", "warm", "follow up", "no answer", "interested", ""}
)

// Generate builds rows with a random header spelling. Exactly
// round(Rows*InvalidRatio) rows are invalid, spread through the file, and
// some valid values carry surrounding whitespace the service must trim.
func Generate(cfg *Config) (header []string, rows []Lead, invalid int) {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	header = []string{
		leads.FirstNameKeys[rng.IntN(len(leads.FirstNameKeys))],
		leads.PhoneKeys[rng.IntN(len(leads.PhoneKeys))],
		leads.NotesKeys[rng.IntN(len(leads.NotesKeys))],
	}

	invalid = int(float64(cfg.Rows)*cfg.InvalidRatio + 0.5)
	if invalid > cfg.Rows {
		invalid = cfg.Rows
	}
	bad := make(map[int]bool, invalid)
	for _, i := range rng.Perm(cfg.Rows)[:invalid] {
		bad[i] = true
	}

	rows = make([]Lead, cfg.Rows)
	for i := range rows {
		l := Lead{
			FirstName: firstNames[rng.IntN(len(firstNames))],
			Phone:     fmt.Sprintf("+1555%07d", rng.IntN(10_000_000)),
			Notes:     noteWords[rng.IntN(len(noteWords))],
		}
		if rng.IntN(4) == 0 {
			l.FirstName = "  " + l.FirstName + " "
		}
		if bad[i] {
			if rng.IntN(2) == 0 {
				l.FirstName = ""
			} else {
				l.Phone = ""
			}
		}
		rows[i] = l
	}
	return header, rows, invalid
}

// WriteFile writes header and leads to path in the given format.
func WriteFile(ctx context.Context, path, format string, header []string, rows []Lead) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	var err error
	switch strings.ToLower(format) {
	case FormatCSV:
		err = writeCSV(path, header, rows)
	case FormatXLSX:
		err = writeXLSX(path, header, rows)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "lead file written", logger.String("path", path), logger.Int("rows", len(rows)))
	return nil
}

func writeCSV(path string, header []string, rows []Lead) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range rows {
		if err := w.Write([]string{l.FirstName, l.Phone, l.Notes}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

func writeXLSX(path string, header []string, rows []Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetRow("A1", []interface{}{header[0], header[1], header[2]}); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, l := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, []interface{}{l.FirstName, l.Phone, l.Notes}); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush xlsx: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
