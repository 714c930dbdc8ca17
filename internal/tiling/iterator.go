package tiling

import "fmt"

// Tile is one block of a tiled raster. OffsetX/OffsetY locate its top left
// pixel; SpanX/SpanY is the part of the block that lies inside the raster,
// smaller than the tile size only on the last column/row.
type Tile struct {
	BlockX, BlockY   int
	OffsetX, OffsetY int
	SpanX, SpanY     int
}

// Pixels returns the number of valid pixels in the tile
func (t Tile) Pixels() int {
	return t.SpanX * t.SpanY
}

func (t Tile) String() string {
	return fmt.Sprintf("block(%d,%d) offset(%d,%d) span %dx%d",
		t.BlockX, t.BlockY, t.OffsetX, t.OffsetY, t.SpanX, t.SpanY)
}

// Iterator enumerates the tiles covering a raster in row-major order
type Iterator struct {
	width, height         int
	tileWidth, tileHeight int
	nx, ny                int
	i, j                  int
}

// NewIterator returns an iterator over a width x height raster split into
// tileWidth x tileHeight blocks. Non-positive sizes yield no tiles.
func NewIterator(width, height, tileWidth, tileHeight int) *Iterator {
	it := &Iterator{
		width:      width,
		height:     height,
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
	}
	if width > 0 && height > 0 && tileWidth > 0 && tileHeight > 0 {
		it.nx = (width + tileWidth - 1) / tileWidth
		it.ny = (height + tileHeight - 1) / tileHeight
	}
	return it
}

// Count returns the number of tiles along each axis
func (it *Iterator) Count() (int, int) {
	return it.nx, it.ny
}

// Len returns the total number of tiles
func (it *Iterator) Len() int {
	return it.nx * it.ny
}

// First rewinds the iterator and returns the top-left tile
func (it *Iterator) First() (Tile, bool) {
	it.Reset()
	return it.Next()
}

// Next returns the following tile, or false once every tile was returned
func (it *Iterator) Next() (Tile, bool) {
	if it.j >= it.ny || it.nx == 0 {
		return Tile{}, false
	}
	t := it.tile(it.i, it.j)
	it.i++
	if it.i >= it.nx {
		it.i = 0
		it.j++
	}
	return t, true
}

// Reset rewinds the iterator to the first tile
func (it *Iterator) Reset() {
	it.i, it.j = 0, 0
}

// Tiles returns every remaining tile
func (it *Iterator) Tiles() []Tile {
	tiles := make([]Tile, 0, it.Len())
	for t, ok := it.Next(); ok; t, ok = it.Next() {
		tiles = append(tiles, t)
	}
	return tiles
}

func (it *Iterator) tile(i, j int) Tile {
	t := Tile{
		BlockX:  i,
		BlockY:  j,
		OffsetX: i * it.tileWidth,
		OffsetY: j * it.tileHeight,
		SpanX:   it.tileWidth,
		SpanY:   it.tileHeight,
	}
	if i == it.nx-1 {
		t.SpanX = it.width - t.OffsetX
	}
	if j == it.ny-1 {
		t.SpanY = it.height - t.OffsetY
	}
	return t
}
