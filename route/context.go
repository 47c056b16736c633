package route

import (
	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// Terrain is the land-membership capability supplied by the caller. It wraps
// the loaded mask with calibration and dilation already applied; results are
// stable for the lifetime of one request.
type Terrain interface {
	IsBlocked(hexgrid.Cell) bool
	Resolution() int
}

// Context carries everything one route computation needs. It is owned by a
// single request and never shared.
type Context struct {
	grid   hexgrid.Grid
	fine   Terrain
	macro  Terrain
	params Params
	latlon.LatLonSpherical

	ops uint64
}

// NewContext builds the computation context for one request. macro may be
// nil when no coarse-resolution oracle is available; the skeleton tier is
// then skipped.
func NewContext(grid hexgrid.Grid, fine, macro Terrain, params Params) *Context {
	return &Context{
		grid:   grid,
		fine:   fine,
		macro:  macro,
		params: params.WithDefaults(),
	}
}

// Ops returns the number of cell expansions spent so far.
func (c *Context) Ops() uint64 {
	return c.ops
}

func (c *Context) cellAt(t Terrain, p latlon.LatLon) hexgrid.Cell {
	return c.grid.CellAt(p, t.Resolution())
}

func (c *Context) blockedAt(t Terrain, p latlon.LatLon) bool {
	return t.IsBlocked(c.cellAt(t, p))
}
