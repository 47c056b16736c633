package hexgrid

import (
	h3 "github.com/uber/h3-go/v3"

	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// Cell is one tile of the hexagonal tiling at a given resolution. Cells are
// only comparable when produced at the same resolution.
type Cell = h3.H3Index

// Grid is the hex grid capability handed to the router.
type Grid interface {
	CellAt(p latlon.LatLon, res int) Cell
	Center(c Cell) latlon.LatLon
	Neighbors(c Cell) []Cell
	Ring(c Cell, k int) []Cell
	Disk(c Cell, k int) []Cell
	Steps(a, b Cell) int
	Resolution(c Cell) int
	EdgeLength(res int) float64
}

// average hex edge length in meters, per resolution
var edgeLengthM = []float64{
	1107712.591, 418676.0055, 158244.6558, 59810.85794,
	22606.3794, 8544.408276, 3229.482772, 1220.629759,
	461.354684, 174.375668, 65.907807, 24.910561,
	9.415526, 3.559893, 1.348575, 0.509713,
}

type H3Grid struct{}

func (H3Grid) CellAt(p latlon.LatLon, res int) Cell {
	return h3.FromGeo(h3.GeoCoord{Latitude: p.Lat, Longitude: p.Lon}, res)
}

func (H3Grid) Center(c Cell) latlon.LatLon {
	g := h3.ToGeo(c)
	return latlon.LatLon{Lat: g.Latitude, Lon: latlon.NormalizeLon(g.Longitude)}
}

// Neighbors returns the immediate neighbors of c: 6 cells, or 5 at a grid
// pentagon.
func (g H3Grid) Neighbors(c Cell) []Cell {
	return g.Ring(c, 1)
}

// Ring returns the cells exactly k hex-steps from c. Computed as the
// difference of two k-rings because h3's hexRing faults on rings that cross
// a pentagon.
func (H3Grid) Ring(c Cell, k int) []Cell {
	if k <= 0 {
		return []Cell{c}
	}
	inner := make(map[Cell]struct{})
	for _, i := range h3.KRing(c, k-1) {
		inner[i] = struct{}{}
	}
	var ring []Cell
	for _, i := range h3.KRing(c, k) {
		if _, ok := inner[i]; !ok {
			ring = append(ring, i)
		}
	}
	return ring
}

// Disk returns every cell within k hex-steps of c, including c itself.
func (H3Grid) Disk(c Cell, k int) []Cell {
	return h3.KRing(c, k)
}

// Steps returns the number of hex-steps between two cells of the same
// resolution, or -1 when h3 cannot compute it.
func (H3Grid) Steps(a, b Cell) int {
	return h3.DistanceBetween(a, b)
}

func (H3Grid) Resolution(c Cell) int {
	return h3.Resolution(c)
}

// EdgeLength returns the average edge length in meters of a cell at res.
func (H3Grid) EdgeLength(res int) float64 {
	if res < 0 || res >= len(edgeLengthM) {
		return 0
	}
	return edgeLengthM[res]
}

// CellFromString parses the canonical hex representation of a cell, as used
// for land overrides in route requests.
func CellFromString(s string) (Cell, bool) {
	c := h3.FromString(s)
	if !h3.IsValid(c) {
		return 0, false
	}
	return c, true
}

func CellToString(c Cell) string {
	return h3.ToString(c)
}
