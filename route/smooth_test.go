package route

import (
	"testing"

	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

func TestSimplifyCollapsesStraightRun(t *testing.T) {
	c := testContext(t, Params{})
	pts := c.chordPoints(openA, openB, 5e3)
	if len(pts) < 4 {
		t.Fatalf("fixture chord has %d points; want >= 4", len(pts))
	}
	out := c.simplify(c.fine, pts)
	if len(out) != 2 {
		t.Errorf("simplify(straight open-water run) kept %d points; want 2", len(out))
	}
	if !out[0].EqualsWithin(pts[0], 1e-9) || !out[len(out)-1].EqualsWithin(pts[len(pts)-1], 1e-9) {
		t.Errorf("simplify moved the endpoints")
	}
}

func TestSimplifyKeepsNeededVia(t *testing.T) {
	c := testContext(t, Params{})
	via := latlon.LatLon{Lat: 0.0, Lon: -28.5} // well east of the island
	pts := []latlon.LatLon{northOfIt, via, southOfIt}
	out := c.simplify(c.fine, pts)
	if len(out) != 3 {
		t.Fatalf("simplify dropped a via point shielding land: %d points; want 3", len(out))
	}
	assertClearPath(t, c, c.fine, out)
}

func TestSimplifyShortInput(t *testing.T) {
	c := testContext(t, Params{})
	pts := []latlon.LatLon{openA, openB}
	out := c.simplify(c.fine, pts)
	if len(out) != 2 {
		t.Errorf("simplify(2 points) = %d points; want 2 unchanged", len(out))
	}
}
