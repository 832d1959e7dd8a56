package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/leadsplit/internal/leadgen"
	"github.com/okian/leadsplit/pkg/logger"
)

// Default configuration constants.
const (
	defaultRows         = 23
	defaultInvalidRatio = 0.1
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 5 * time.Minute
)

func main() {
	var (
		rows     = flag.Int("rows", defaultRows, "Number of rows to generate")
		invalid  = flag.Float64("invalid", defaultInvalidRatio, "Share of invalid rows, 0..1")
		format   = flag.String("format", leadgen.FormatCSV, "Output format: csv or xlsx")
		out      = flag.String("out", "", "Output file (default: leads_TIMESTAMP.<format>)")
		seed     = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
		upload   = flag.Bool("upload", false, "Upload the file and verify the distribution")
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		token    = flag.String("token", "", "Bearer token")
		email    = flag.String("email", "", "Admin email used when -token is empty")
		password = flag.String("password", "", "Admin password used when -token is empty")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		leadgen.ShowHelp(os.Stdout)
		return
	}
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	if *rows < 0 || *invalid < 0 || *invalid > 1 {
		fmt.Fprintln(os.Stderr, "rows must be >= 0 and invalid within 0..1")
		os.Exit(2)
	}
	if *out == "" {
		*out = fmt.Sprintf("leads_%s.%s", time.Now().Format("20060102_150405"), *format)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &leadgen.Config{
		BaseURL:      *baseURL,
		Rows:         *rows,
		InvalidRatio: *invalid,
		Format:       *format,
		OutputFile:   *out,
		Seed:         *seed,
		Upload:       *upload,
		Token:        *token,
		Email:        *email,
		Password:     *password,
		Timeout:      *timeout,
		Verbose:      *verbose,
	}

	stats, err := leadgen.Run(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "leadgen failed:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %d rows (%d valid, %d invalid)\n", cfg.OutputFile, stats.RowsGenerated, stats.ValidRows, stats.InvalidRows)
	if stats.Response != nil {
		fmt.Printf("service: %s, counts %v\n", stats.Response.Message, stats.Response.Counts)
	}
}
