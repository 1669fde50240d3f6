package partition

// Stats describes the shape of a built tree.
type Stats struct {
	Points         int
	Dimension      int
	LeafSize       int
	Leaves         int
	ForcedLeaves   int
	Depth          int
	MinLeafPoints  int
	MaxLeafPoints  int
	MeanLeafPoints float64
	Owned          bool
}

// Stats computes tree statistics.
func (t *Tree[T]) Stats() Stats {
	s := Stats{
		Points:    len(t.points),
		Dimension: t.dim,
		LeafSize:  t.leafSize,
		Leaves:    len(t.leaves),
		Owned:     t.owned,
	}
	if len(t.leaves) == 0 {
		return s
	}

	s.MinLeafPoints = len(t.leaves[0].indices)
	total := 0
	for _, l := range t.leaves {
		size := len(l.indices)
		total += size
		s.MinLeafPoints = min(s.MinLeafPoints, size)
		s.MaxLeafPoints = max(s.MaxLeafPoints, size)
		s.Depth = max(s.Depth, l.depth)
		if l.forced {
			s.ForcedLeaves++
		}
	}
	s.MeanLeafPoints = float64(total) / float64(len(t.leaves))
	return s
}
