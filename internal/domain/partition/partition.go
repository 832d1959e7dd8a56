// Package partition splits validated items across a fixed pool of agents.
//
// The split is contiguous and deterministic: slot i receives the next
// Sizes(n, k)[i] items in input order, where the first n mod k slots get one
// item more than the rest.
package partition

import (
	"errors"
	"fmt"

	"github.com/okian/leadsplit/internal/domain/model"
)

// PoolSize is the number of agents every upload is distributed across.
const PoolSize = 5

// ErrPoolSize is returned when the agent slice does not match PoolSize.
var ErrPoolSize = errors.New("agent pool has wrong size")

// Batch holds one slice of items per agent, index aligned with Agents.
type Batch struct {
	Agents []model.Agent
	Slots  [][]model.Item
}

// Sizes returns the slot sizes for n items over k slots.
func Sizes(n, k int) []int {
	if k <= 0 {
		return nil
	}
	base := n / k
	remainder := n % k
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = base
		if remainder > 0 {
			sizes[i]++
			remainder--
		}
	}
	return sizes
}

// Partition assigns items to agents. agents must hold exactly PoolSize
// entries, already in pool order.
func Partition(items []model.Item, agents []model.Agent) (Batch, error) {
	if len(agents) != PoolSize {
		return Batch{}, fmt.Errorf("%w: got %d, want %d", ErrPoolSize, len(agents), PoolSize)
	}

	slots := make([][]model.Item, len(agents))
	idx := 0
	for i, size := range Sizes(len(items), len(agents)) {
		slots[i] = items[idx : idx+size : idx+size]
		idx += size
	}
	return Batch{Agents: agents, Slots: slots}, nil
}

// Counts returns the size of every slot in pool order.
func (b Batch) Counts() []int {
	counts := make([]int, len(b.Slots))
	for i, s := range b.Slots {
		counts[i] = len(s)
	}
	return counts
}

// Total returns the number of items across all slots.
func (b Batch) Total() int {
	total := 0
	for _, s := range b.Slots {
		total += len(s)
	}
	return total
}

// Assigned flattens the batch into store rows, slot by slot.
func (b Batch) Assigned() []model.AssignedItem {
	out := make([]model.AssignedItem, 0, b.Total())
	for i, slot := range b.Slots {
		for _, item := range slot {
			out = append(out, model.AssignedItem{Item: item, AssignedTo: b.Agents[i].ID})
		}
	}
	return out
}
