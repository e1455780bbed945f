package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gotreebud/treebud/pkg/xunsafe/layout"
)

func TestRounding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, layout.RoundUp(0, 8))
	assert.Equal(t, 8, layout.RoundUp(1, 8))
	assert.Equal(t, 8, layout.RoundUp(8, 8))
	assert.Equal(t, 16, layout.RoundUp(9, 8))
	assert.Equal(t, 16, layout.RoundUp(15, 8))
	assert.Equal(t, 16, layout.RoundUp(16, 8))

	assert.Equal(t, 0, layout.Padding(8, 8))
	assert.Equal(t, 7, layout.Padding(9, 8))
	assert.Equal(t, 1, layout.Padding(15, 8))
	assert.Equal(t, 0, layout.Padding(16, 8))

	for v := 0; v <= 64; v++ {
		assert.Equal(t, layout.RoundUp(v, 16), v+layout.Padding(v, 16), "v=%d", v)
	}
}

func TestSizeAndAlign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, layout.Size[byte]())
	assert.Equal(t, 8, layout.Size[uint64]())
	assert.Equal(t, 1, layout.Align[byte]())
	assert.Equal(t, 8, layout.Align[uint64]())
}
