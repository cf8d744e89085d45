package mcslices

// MemChunk is a Chunk backed by plain slices, indexed ((y*depth)+z)*width+x.
type MemChunk struct {
	CX, CZ int

	width, height, depth int
	types                []int
	variants             []int
}

func NewMemChunk(cx, cz, width, height, depth int) *MemChunk {
	size := width * height * depth
	return &MemChunk{
		CX:       cx,
		CZ:       cz,
		width:    width,
		height:   height,
		depth:    depth,
		types:    make([]int, size),
		variants: make([]int, size),
	}
}

func (c *MemChunk) X() int      { return c.CX }
func (c *MemChunk) Z() int      { return c.CZ }
func (c *MemChunk) Width() int  { return c.width }
func (c *MemChunk) Height() int { return c.height }
func (c *MemChunk) Depth() int  { return c.depth }

func (c *MemChunk) index(x, y, z int) int {
	return ((y*c.depth)+z)*c.width + x
}

func (c *MemChunk) Cell(x, y, z int) (int, int) {
	i := c.index(x, y, z)
	return c.types[i], c.variants[i]
}

func (c *MemChunk) SetCell(x, y, z, typ, variant int) {
	i := c.index(x, y, z)
	c.types[i] = typ
	c.variants[i] = variant
}

// Fill sets every cell of layer y.
func (c *MemChunk) Fill(y, typ, variant int) {
	for z := 0; z < c.depth; z++ {
		for x := 0; x < c.width; x++ {
			c.SetCell(x, y, z, typ, variant)
		}
	}
}
