package schtree

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/schtree/internal/partition"
)

// SearchStats counts the work done by a search or a batch of searches.
type SearchStats struct {
	Queries       int
	LeavesVisited int
	LeavesPruned  int
	PointsScanned int
}

func fromPartitionStats(s partition.SearchStats) SearchStats {
	return SearchStats{
		Queries:       s.Queries,
		LeavesVisited: s.LeavesVisited,
		LeavesPruned:  s.LeavesPruned,
		PointsScanned: s.PointsScanned,
	}
}

type searchOptions struct {
	sorted bool
	filter *roaring.Bitmap
	stats  *SearchStats
}

// SearchOption configures Search and BulkSearch.
type SearchOption func(*searchOptions)

// WithSorted returns results finalized in ascending (distance, index) order.
// Sorted results reject further inserts.
func WithSorted() SearchOption {
	return func(o *searchOptions) {
		o.sorted = true
	}
}

// WithFilter restricts candidates to the point indices contained in allow.
// Results stay exact with respect to the allowed subset; they may hold fewer
// than k neighbors.
func WithFilter(allow *roaring.Bitmap) SearchOption {
	return func(o *searchOptions) {
		o.filter = allow
	}
}

// WithSearchStats stores the work counters of the call in dst.
// For BulkSearch dst receives the totals over all queries.
func WithSearchStats(dst *SearchStats) SearchOption {
	return func(o *searchOptions) {
		o.stats = dst
	}
}

func applySearchOptions(optFns []SearchOption) searchOptions {
	var o searchOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o searchOptions) partition() partition.SearchOptions {
	return partition.SearchOptions{Sorted: o.sorted, Filter: o.filter}
}
