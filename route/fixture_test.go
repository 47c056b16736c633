package route

import (
	"testing"

	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/land"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// All search tests run against a synthetic geography: one island in the
// mid-Atlantic, open ocean everywhere else.

const (
	testRes     = 5
	testIslandK = 6 // island radius in res-5 rings, ~55 km
	testMaskFp  = 1e-6
)

var (
	tGrid = hexgrid.H3Grid{}

	islandCenter = latlon.LatLon{Lat: 0.0, Lon: -30.0}
	northOfIt    = latlon.LatLon{Lat: 1.5, Lon: -30.0}
	southOfIt    = latlon.LatLon{Lat: -1.5, Lon: -30.0}
	openA        = latlon.LatLon{Lat: -35.0, Lon: -140.0}
	openB        = latlon.LatLon{Lat: -35.3, Lon: -139.7}
)

// islandCells is the island disk plus a continental-interior disk so the
// default calibration probes resolve to LAND mode.
func islandCells(res, rings int) []hexgrid.Cell {
	cells := tGrid.Disk(tGrid.CellAt(islandCenter, res), rings)
	cells = append(cells, tGrid.Disk(tGrid.CellAt(land.DefaultProbes.Interior, res), 3)...)
	return cells
}

func islandTerrain(t *testing.T, res, rings int) *land.Oracle {
	t.Helper()
	o, err := land.NewOracle(land.NewMask(islandCells(res, rings), testMaskFp), tGrid, land.Config{Resolution: res})
	if err != nil {
		t.Fatalf("NewOracle() error = %v", err)
	}
	return o
}

func testContext(t *testing.T, params Params) *Context {
	t.Helper()
	params.Resolution = testRes
	return NewContext(tGrid, islandTerrain(t, testRes, testIslandK), nil, params)
}

// assertClearPath checks the smoothing invariant: no sub-segment of the
// final path may cross land.
func assertClearPath(t *testing.T, c *Context, terr Terrain, pts []latlon.LatLon) {
	t.Helper()
	if len(pts) < 2 {
		t.Fatalf("path has %d points; want >= 2", len(pts))
	}
	for i := 0; i+1 < len(pts); i++ {
		if c.chordBlocked(terr, pts[i], pts[i+1]) {
			t.Fatalf("path segment %d crosses land: {%f,%f} -> {%f,%f}",
				i, pts[i].Lat, pts[i].Lon, pts[i+1].Lat, pts[i+1].Lon)
		}
	}
}

// wallTerrain reports every cell as blocked.
type wallTerrain struct{ res int }

func (w wallTerrain) IsBlocked(hexgrid.Cell) bool { return true }
func (w wallTerrain) Resolution() int             { return w.res }
