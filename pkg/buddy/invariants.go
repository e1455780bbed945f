package buddy

import "github.com/gotreebud/treebud/internal/debug"

// checkInvariants walks the whole tree and asserts the structural invariants
// that must hold between public calls: a full cell has no full ancestor, a
// split cell has at least one non-free descendant, a free cell has an
// all-free subtree, and the counters account for every byte exactly once.
// Allocate and Free run it on entry and exit. Outside debug builds the walk
// is skipped entirely.
func (a *Allocator) checkInvariants() {
	if !debug.Enabled {
		return
	}

	a.checkSubtree(1, 1, false)
	debug.Assert(a.inuse+a.unused == a.size,
		"inuse %d + unused %d drifted from size %d", a.inuse, a.unused, a.size)
	debug.Assert(a.requested <= a.inuse,
		"requested %d exceeds inuse %d", a.requested, a.inuse)
}

// checkSubtree asserts the per-cell invariants below cell and reports
// whether the subtree contains any non-free cell.
func (a *Allocator) checkSubtree(level, cell int, underFull bool) bool {
	if level > a.levels {
		return false
	}

	full := a.bits.isFull(cell)
	debug.Assert(!full || !underFull, "cell %d is full under a full ancestor", cell)

	l := a.checkSubtree(level+1, left(cell), underFull || full)
	r := a.checkSubtree(level+1, right(cell), underFull || full)

	switch {
	case a.bits.isSplit(cell):
		debug.Assert(l || r, "cell %d is split over an all-free subtree", cell)
	case a.bits.isFree(cell):
		debug.Assert(!l && !r, "cell %d is free above a non-free descendant", cell)
	}

	return full || a.bits.isSplit(cell)
}
