package partition_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/internal/domain/partition"
	. "github.com/smartystreets/goconvey/convey"
)

func makeItems(n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.Item{FirstName: fmt.Sprintf("lead-%d", i), Phone: fmt.Sprintf("+1555%04d", i)}
	}
	return items
}

func makeAgents(n int) []model.Agent {
	agents := make([]model.Agent, n)
	for i := range agents {
		agents[i] = model.Agent{ID: fmt.Sprintf("agent-%d", i), Name: fmt.Sprintf("Agent %d", i)}
	}
	return agents
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestSizes(t *testing.T) {
	Convey("Given the slot size formula", t, func() {
		Convey("Then 23 items over 5 slots should be [5 5 5 4 4]", func() {
			So(partition.Sizes(23, 5), ShouldResemble, []int{5, 5, 5, 4, 4})
		})

		Convey("Then 3 items over 5 slots should be [1 1 1 0 0]", func() {
			So(partition.Sizes(3, 5), ShouldResemble, []int{1, 1, 1, 0, 0})
		})

		Convey("Then 0 items should give all zeros", func() {
			So(partition.Sizes(0, 5), ShouldResemble, []int{0, 0, 0, 0, 0})
		})

		Convey("Then it should generalise to other pool sizes", func() {
			So(partition.Sizes(10, 3), ShouldResemble, []int{4, 3, 3})
			So(partition.Sizes(7, 0), ShouldBeNil)
		})

		Convey("Then completeness, fairness and extra-item priority should hold for many n", func() {
			for n := 0; n <= 200; n++ {
				sizes := partition.Sizes(n, partition.PoolSize)
				So(sum(sizes), ShouldEqual, n)

				lo, hi := sizes[0], sizes[0]
				for _, s := range sizes {
					lo = min(lo, s)
					hi = max(hi, s)
				}
				So(hi-lo, ShouldBeLessThanOrEqualTo, 1)

				for i, s := range sizes {
					if i < n%partition.PoolSize {
						So(s, ShouldEqual, n/partition.PoolSize+1)
					} else {
						So(s, ShouldEqual, n/partition.PoolSize)
					}
				}
			}
		})
	})
}

func TestPartition(t *testing.T) {
	Convey("Given 23 items and 5 agents", t, func() {
		items := makeItems(23)
		agents := makeAgents(partition.PoolSize)

		Convey("When partitioning", func() {
			batch, err := partition.Partition(items, agents)

			Convey("Then slots should be contiguous, ordered and exhaustive", func() {
				So(err, ShouldBeNil)
				So(batch.Counts(), ShouldResemble, []int{5, 5, 5, 4, 4})
				So(batch.Total(), ShouldEqual, 23)

				var flat []model.Item
				for _, slot := range batch.Slots {
					flat = append(flat, slot...)
				}
				So(flat, ShouldResemble, items)
				So(batch.Slots[3][0].FirstName, ShouldEqual, "lead-15")
			})

			Convey("Then assigned rows should carry the owning agent", func() {
				rows := batch.Assigned()
				So(rows, ShouldHaveLength, 23)
				So(rows[0].AssignedTo, ShouldEqual, "agent-0")
				So(rows[4].AssignedTo, ShouldEqual, "agent-0")
				So(rows[5].AssignedTo, ShouldEqual, "agent-1")
				So(rows[22].AssignedTo, ShouldEqual, "agent-4")
			})

			Convey("Then repeating the call should give an identical batch", func() {
				again, err := partition.Partition(items, agents)
				So(err, ShouldBeNil)
				So(again.Slots, ShouldResemble, batch.Slots)
			})
		})
	})

	Convey("Given fewer items than agents", t, func() {
		batch, err := partition.Partition(makeItems(3), makeAgents(partition.PoolSize))

		Convey("Then the first agents should get one item each", func() {
			So(err, ShouldBeNil)
			So(batch.Counts(), ShouldResemble, []int{1, 1, 1, 0, 0})
			So(batch.Slots[4], ShouldBeEmpty)
		})
	})

	Convey("Given a pool of the wrong size", t, func() {
		_, err := partition.Partition(makeItems(10), makeAgents(4))

		Convey("Then partitioning should fail", func() {
			So(errors.Is(err, partition.ErrPoolSize), ShouldBeTrue)
		})
	})
}
