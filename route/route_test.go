package route

import (
	"context"
	"errors"
	"testing"

	"github.com/chadlanoway/Bottle-of-Rhumb/land"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

func TestRunTooFewWaypoints(t *testing.T) {
	o := islandTerrain(t, testRes, testIslandK)
	for _, wps := range [][]latlon.LatLon{nil, {openA}} {
		_, err := Run(context.Background(), tGrid, o, nil, wps, Params{Resolution: testRes}, nil)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Run(%d waypoints) error = %v; want ErrInvalidInput", len(wps), err)
		}
	}
}

func TestRunOpenOceanChordTier(t *testing.T) {
	o := islandTerrain(t, testRes, testIslandK)
	res, err := Run(context.Background(), tGrid, o, nil,
		[]latlon.LatLon{openA, openB}, Params{Resolution: testRes}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.Tiers["chord"] != 1 {
		t.Errorf("Tiers = %v; want the single leg solved by chord", res.Summary.Tiers)
	}
	if res.Summary.Snapped != 0 || len(res.DockLegs) != 0 {
		t.Errorf("open-water endpoints were snapped: %d moved, %d dock legs",
			res.Summary.Snapped, len(res.DockLegs))
	}
	c := NewContext(tGrid, o, nil, Params{Resolution: testRes})
	assertClearPath(t, c, o, res.Path)
	if res.Summary.Distance <= 0 {
		t.Errorf("Summary.Distance = %v; want > 0", res.Summary.Distance)
	}
}

func TestRunFineTierAroundIsland(t *testing.T) {
	o := islandTerrain(t, testRes, testIslandK)
	res, err := Run(context.Background(), tGrid, o, nil,
		[]latlon.LatLon{northOfIt, southOfIt}, Params{Resolution: testRes}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.Tiers["fine"] != 1 {
		t.Errorf("Tiers = %v; want the single leg solved by fine search", res.Summary.Tiers)
	}
	c := NewContext(tGrid, o, nil, Params{Resolution: testRes})
	assertClearPath(t, c, o, res.Path)
	if direct := c.DistanceTo(northOfIt, southOfIt); res.Summary.Distance < direct {
		t.Errorf("Distance = %.0f m; want >= the %.0f m direct line it must detour around", res.Summary.Distance, direct)
	}
}

func TestRunMultiLegJoints(t *testing.T) {
	o := islandTerrain(t, testRes, testIslandK)
	openC := latlon.LatLon{Lat: -35.6, Lon: -139.4}
	res, err := Run(context.Background(), tGrid, o, nil,
		[]latlon.LatLon{openA, openB, openC}, Params{Resolution: testRes}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.Legs != 2 || res.Summary.Tiers["chord"] != 2 {
		t.Errorf("Legs = %d, Tiers = %v; want 2 chord legs", res.Summary.Legs, res.Summary.Tiers)
	}
	for i := 0; i+1 < len(res.Path); i++ {
		if res.Path[i].EqualsWithin(res.Path[i+1], jointEpsilon) {
			t.Errorf("duplicate point at leg joint, index %d", i)
		}
	}
}

func TestRunSnapsLandWaypoint(t *testing.T) {
	o := islandTerrain(t, testRes, 2)
	res, err := Run(context.Background(), tGrid, o, nil,
		[]latlon.LatLon{islandCenter, southOfIt}, Params{Resolution: testRes}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.Snapped != 1 || len(res.DockLegs) != 1 {
		t.Fatalf("Snapped = %d, DockLegs = %d; want 1 and 1", res.Summary.Snapped, len(res.DockLegs))
	}
	if !res.Path[0].EqualsWithin(islandCenter, 1e-9) {
		t.Errorf("Path[0] = {%f,%f}; want the original waypoint", res.Path[0].Lat, res.Path[0].Lon)
	}
	if !res.DockLegs[0].From.EqualsWithin(islandCenter, 1e-9) {
		t.Errorf("dock leg does not start at the original waypoint")
	}
	if res.DockLegs[0].Waypoint != 0 {
		t.Errorf("DockLegs[0].Waypoint = %d; want 0", res.DockLegs[0].Waypoint)
	}
	if !res.Path[1].EqualsWithin(res.DockLegs[0].To, 1e-9) {
		t.Errorf("Path[1] is not the snapped water point")
	}
	// everything past the dock leg must stay on water
	c := NewContext(tGrid, o, nil, Params{Resolution: testRes})
	assertClearPath(t, c, o, res.Path[1:])
}

func TestRunSnapsMiddleWaypoint(t *testing.T) {
	o := islandTerrain(t, testRes, 2)
	res, err := Run(context.Background(), tGrid, o, nil,
		[]latlon.LatLon{northOfIt, islandCenter, southOfIt}, Params{Resolution: testRes}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.DockLegs) != 1 {
		t.Fatalf("DockLegs = %d; want 1 for the on-land middle waypoint", len(res.DockLegs))
	}
	if res.DockLegs[0].Waypoint != 1 {
		t.Errorf("DockLegs[0].Waypoint = %d; want 1", res.DockLegs[0].Waypoint)
	}
	if !res.DockLegs[0].From.EqualsWithin(islandCenter, 1e-9) {
		t.Errorf("middle dock leg does not anchor the original waypoint")
	}
}

func TestRunMacroTier(t *testing.T) {
	center := latlon.LatLon{Lat: 0.0, Lon: -40.0}
	cells := tGrid.Disk(tGrid.CellAt(center, 6), 6)
	cells = append(cells, tGrid.Disk(tGrid.CellAt(center, 4), 1)...)
	cells = append(cells, tGrid.Disk(tGrid.CellAt(land.DefaultProbes.Interior, 6), 3)...)
	cells = append(cells, tGrid.Disk(tGrid.CellAt(land.DefaultProbes.Interior, 4), 1)...)
	mask := land.NewMask(cells, testMaskFp)

	fine, err := land.NewOracle(mask, tGrid, land.Config{Resolution: 6})
	if err != nil {
		t.Fatalf("NewOracle(fine) error = %v", err)
	}
	macro, err := land.NewOracle(mask, tGrid, land.Config{Resolution: 4})
	if err != nil {
		t.Fatalf("NewOracle(macro) error = %v", err)
	}

	// the expansion cap is below the straight-line cell count, so fine
	// search can never finish and the macro planner has to take over
	params := Params{Resolution: 6, MacroResolution: 4, MaxExpansions: 25}
	a := latlon.LatLon{Lat: 0.7, Lon: -40.0}
	b := latlon.LatLon{Lat: -0.7, Lon: -40.0}

	res, err := Run(context.Background(), tGrid, fine, macro, []latlon.LatLon{a, b}, params, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Summary.Tiers["macro"] != 1 {
		t.Errorf("Tiers = %v; want the leg solved by the macro planner", res.Summary.Tiers)
	}
	c := NewContext(tGrid, fine, macro, params)
	assertClearPath(t, c, fine, res.Path)
}

func TestRunLagoonNoPath(t *testing.T) {
	lagoon := latlon.LatLon{Lat: -10.0, Lon: -40.0}
	origin := tGrid.CellAt(lagoon, testRes)
	cells := tGrid.Disk(tGrid.CellAt(land.DefaultProbes.Interior, testRes), 3)
	for k := 6; k <= 8; k++ {
		cells = append(cells, tGrid.Ring(origin, k)...)
	}
	o, err := land.NewOracle(land.NewMask(cells, testMaskFp), tGrid, land.Config{Resolution: testRes})
	if err != nil {
		t.Fatalf("NewOracle() error = %v", err)
	}

	outside := latlon.LatLon{Lat: -8.0, Lon: -40.0}
	_, err = Run(context.Background(), tGrid, o, nil,
		[]latlon.LatLon{lagoon, outside}, Params{Resolution: testRes}, nil)
	if !errors.Is(err, ErrNoPathFound) {
		t.Errorf("Run() out of a closed lagoon: error = %v; want ErrNoPathFound", err)
	}
}
