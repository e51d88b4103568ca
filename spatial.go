package main

import "math"

// SpatialCellSize is about twice the widest thing a query covers: a player
// capsule plus the largest projectile
const SpatialCellSize = 200.0

type cellKey struct{ x, y int }

// SpatialGrid is a sparse grid over the ground plane for broad-phase
// collision queries. Height is ignored; the narrow phase checks it.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]string
}

// NewSpatialGrid creates an empty grid
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = SpatialCellSize
	}
	return &SpatialGrid{cellSize: cellSize, cells: make(map[cellKey][]string)}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
}

func (g *SpatialGrid) span(loc Vec3, radius float64) (minX, maxX, minY, maxY int) {
	minX = int(math.Floor((loc.X - radius) / g.cellSize))
	maxX = int(math.Floor((loc.X + radius) / g.cellSize))
	minY = int(math.Floor((loc.Y - radius) / g.cellSize))
	maxY = int(math.Floor((loc.Y + radius) / g.cellSize))
	return
}

// Insert adds an entity to all cells overlapping its bounding square
func (g *SpatialGrid) Insert(loc Vec3, radius float64, id string) {
	minX, maxX, minY, maxY := g.span(loc, radius)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			k := cellKey{cx, cy}
			g.cells[k] = append(g.cells[k], id)
		}
	}
}

// QueryBuf appends the entities in cells overlapping the bounding square
// to buf, each once, in insertion order per cell
func (g *SpatialGrid) QueryBuf(loc Vec3, radius float64, buf []string) []string {
	start := len(buf)
	minX, maxX, minY, maxY := g.span(loc, radius)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
		next:
			for _, id := range g.cells[cellKey{cx, cy}] {
				for _, have := range buf[start:] {
					if have == id {
						continue next
					}
				}
				buf = append(buf, id)
			}
		}
	}
	return buf
}
