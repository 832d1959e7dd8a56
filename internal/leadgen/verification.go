package leadgen

import (
	"errors"
	"fmt"
	"slices"

	"github.com/okian/leadsplit/internal/domain/partition"
)

// ErrMismatch is returned when the service reports a distribution that does
// not follow from the generated file.
var ErrMismatch = errors.New("distribution mismatch")

// Verify checks resp against the file that produced it: totals, rejected
// rows and per-agent counts from partition.Sizes.
func Verify(resp *UploadResponse, valid, invalid int) error {
	if resp == nil {
		return fmt.Errorf("%w: no response", ErrMismatch)
	}
	if resp.Total != valid {
		return fmt.Errorf("%w: total %d, want %d", ErrMismatch, resp.Total, valid)
	}
	if resp.Rejected != invalid {
		return fmt.Errorf("%w: rejected %d, want %d", ErrMismatch, resp.Rejected, invalid)
	}
	want := partition.Sizes(valid, partition.PoolSize)
	if !slices.Equal(resp.Counts, want) {
		return fmt.Errorf("%w: counts %v, want %v", ErrMismatch, resp.Counts, want)
	}
	return nil
}
