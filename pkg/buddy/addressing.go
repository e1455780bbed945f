package buddy

// left returns the heap index of c's left child.
func left(c int) int { return 2 * c }

// right returns the heap index of c's right child.
func right(c int) int { return 2*c + 1 }

// cellsForLevels returns the total number of cells in a complete binary tree
// of the given depth: 2^levels - 1.
func cellsForLevels(levels int) int {
	return 1<<uint(levels) - 1
}
