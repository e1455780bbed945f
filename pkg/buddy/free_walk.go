package buddy

// freeWalk recursively descends the tree along off, looking for the cell
// that was allocated at that offset, and frees it, coalescing buddies on the
// way back up. It reports whether a live allocation was found and freed.
//
// Unlike the allocation walk, this never takes a size: the cell's state tells
// us whether we've reached the allocation (full, with the residual offset
// down to zero, a terminal match) or an untouched region (free, a terminal
// miss) or must keep descending (split). A full cell reached with a non-zero
// residual means the pointer falls inside that block, not at its start, which
// is also a terminal miss.
func (a *Allocator) freeWalk(off, level, cell int) bool {
	if level > a.levels {
		return false
	}

	max := a.blockSize(level)
	min := max / 2

	switch {
	case a.bits.isFull(cell):
		if off != 0 {
			// The pointer lands in the interior of this block rather than at
			// its start, so it is not an address Allocate ever returned.
			return false
		}
		a.bits.markFree(cell)
		a.inuse -= max
		a.unused += max
		return true

	case a.bits.isFree(cell):
		// A free cell has no non-free descendants, so off cannot correspond to
		// a live allocation anywhere below here.
		return false
	}

	ok := a.freeWalk(off, level+1, left(cell))
	if !ok && off >= min {
		ok = a.freeWalk(off-min, level+1, right(cell))
	}

	if ok && a.bits.isFree(left(cell)) && a.bits.isFree(right(cell)) {
		a.bits.markFree(cell)
	}

	return ok
}
