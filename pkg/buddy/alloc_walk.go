package buddy

import "github.com/gotreebud/treebud/pkg/opt"

// allocWalk recursively descends the tree rooted at cell (at level, covering
// a.blockSize(level) bytes) looking for the smallest free block that can
// satisfy size. It returns the offset of the claimed block relative to the
// start of cell's own block (arena-relative when cell is the root), or
// [opt.None] if no such block exists anywhere in this subtree.
func (a *Allocator) allocWalk(size, level, cell int) opt.Option[int] {
	if level > a.levels {
		return opt.None[int]()
	}

	if a.bits.isFull(cell) {
		// A full cell's entire block belongs to one caller; its subtree is
		// not explored, matching every size that could possibly fit having
		// already been claimed.
		return opt.None[int]()
	}

	max := a.blockSize(level)
	min := max / 2

	placeHere := (size > min && size <= max) || (level == a.levels && size <= min)
	if placeHere {
		if !a.bits.isFree(cell) {
			return opt.None[int]()
		}

		a.bits.markFull(cell)
		a.inuse += max
		a.unused -= max
		a.requested += size
		return opt.Some(0)
	}

	if l := a.allocWalk(size, level+1, left(cell)); l.IsSome() {
		a.bits.markSplit(cell)
		return l
	}

	r := a.allocWalk(size, level+1, right(cell))
	if r.IsNone() {
		return opt.None[int]()
	}

	a.bits.markSplit(cell)
	return opt.Some(r.Unwrap() + min)
}
