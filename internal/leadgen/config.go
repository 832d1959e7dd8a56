// Package leadgen generates sample lead files and drives them through a
// running service to check the distribution it reports.
package leadgen

import "time"

// File formats Generate can write.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Config holds configuration for a generation run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Rows         int           // Number of rows to generate
	InvalidRatio float64       // Share of rows missing a first name or phone, 0..1
	Format       string        // FormatCSV or FormatXLSX
	OutputFile   string        // Where the file is written
	Seed         uint64        // Random seed; equal seeds give equal files
	Upload       bool          // Upload the file after writing it
	Token        string        // Bearer token for the upload
	Email        string        // Admin email used to log in when Token is empty
	Password     string        // Admin password used to log in when Token is empty
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Enable verbose logging
}

// Lead is one generated row before it is written.
type Lead struct {
	FirstName string
	Phone     string
	Notes     string
}

// UploadResponse mirrors the body of POST /api/lists/upload.
type UploadResponse struct {
	Message  string `json:"message"`
	Counts   []int  `json:"counts"`
	Total    int    `json:"total"`
	Rejected int    `json:"rejected"`
}

// Stats holds run statistics.
type Stats struct {
	RowsGenerated int
	ValidRows     int
	InvalidRows   int
	Header        []string
	Response      *UploadResponse
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
