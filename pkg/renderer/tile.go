package renderer

import "image"

// DefaultTileSize is the edge length of a square render tile in pixels
const DefaultTileSize = 32

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier, row-major from the top left
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1), y measured from the top
}

// Seed derives the tile's random seed from the render seed. Tiles never
// share a generator, so the image only depends on the render seed and the
// tile size.
func (t Tile) Seed(renderSeed uint64) uint64 {
	// splitmix64 finalizer over the combined seed
	z := renderSeed + uint64(t.ID+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// passSeedStride separates the seeds of successive progressive passes
const passSeedStride uint64 = 0xd1b54a32d192ed03

// PassSeed derives the tile's seed for a progressive pass. Pass 0 uses the
// same seed as a single-pass render.
func (t Tile) PassSeed(renderSeed uint64, pass int) uint64 {
	return t.Seed(renderSeed + uint64(pass)*passSeedStride)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []Tile {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	var tiles []Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, Tile{ID: tileID, Bounds: image.Rect(x0, y0, x1, y1)})
			tileID++
		}
	}

	return tiles
}
