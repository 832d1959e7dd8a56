package leadgen

import (
	"io"
)

// ShowHelp prints usage information for the lead generator.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `leadgen
=======

Writes a sample lead file with a random header spelling and a share of
invalid rows, optionally uploads it and checks the per-agent counts.

Usage:
  go run ./cmd/leadgen [options]

Options:
  -rows int          Number of rows (default 23)
  -invalid float     Share of invalid rows, 0..1 (default 0.1)
  -format string     csv or xlsx (default "csv")
  -out string        Output file (default: leads_TIMESTAMP.<format>)
  -seed uint         Random seed (default: current time)
  -upload            Upload the file and verify the distribution
  -url string        Base URL of the service (default "http://localhost:8080")
  -token string      Bearer token (or set -email and -password to log in)
  -email string      Admin email
  -password string   Admin password
  -timeout duration  HTTP request timeout (default 30s)
  -verbose           Enable verbose logging
  -help              Show this help message

Examples:
  # Write 1000 rows to an Excel file
  go run ./cmd/leadgen -rows 1000 -format xlsx -out leads.xlsx

  # Upload to a local service and verify
  go run ./cmd/leadgen -upload -email admin@example.com -password secret
`)
}
