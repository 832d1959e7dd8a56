package leadgen

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/leadsplit/pkg/logger"
)

// Run generates the file and, when cfg.Upload is set, uploads it and
// verifies the reported distribution.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("leadgen")
	stats := &Stats{StartTime: time.Now()}

	header, rows, invalid := Generate(cfg)
	stats.Header = header
	stats.RowsGenerated = len(rows)
	stats.InvalidRows = invalid
	stats.ValidRows = len(rows) - invalid

	if err := WriteFile(ctx, cfg.OutputFile, cfg.Format, header, rows); err != nil {
		return stats, err
	}
	if cfg.Verbose {
		log.Info(ctx, "generated leads",
			logger.Any("header", header),
			logger.Int("valid", stats.ValidRows),
			logger.Int("invalid", stats.InvalidRows))
	}

	if !cfg.Upload {
		finish(stats)
		return stats, nil
	}

	client := newHTTPClient(cfg.BaseURL, cfg.Token, cfg.Timeout)
	if cfg.Token == "" {
		if err := client.Login(ctx, cfg.Email, cfg.Password); err != nil {
			return stats, fmt.Errorf("login: %w", err)
		}
	}

	resp, err := client.Upload(ctx, cfg.OutputFile)
	if err != nil {
		return stats, fmt.Errorf("upload: %w", err)
	}
	stats.Response = resp
	log.Info(ctx, "upload accepted",
		logger.String("message", resp.Message),
		logger.Any("counts", resp.Counts),
		logger.Int("rejected", resp.Rejected))

	if err := Verify(resp, stats.ValidRows, stats.InvalidRows); err != nil {
		return stats, err
	}
	finish(stats)
	log.Info(ctx, "distribution verified", logger.Duration("took", stats.Duration))
	return stats, nil
}

func finish(stats *Stats) {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
}
