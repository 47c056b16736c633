package route

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// shoreline bisection stops refining below this distance
const snapTolerance = 25.0

func (c *Context) snapMaxRings(t Terrain) int {
	edge := c.grid.EdgeLength(t.Resolution())
	if edge <= 0 {
		return 1
	}
	rings := int(c.params.SnapMaxDistance / edge)
	if rings < 1 {
		rings = 1
	}
	return rings
}

// nearestUnblockedCell spirals outward ring by ring from p's cell and
// returns the closest unblocked cell. Ties inside a ring break on distance
// to p then on cell id, so repeated calls with the same mask and resolution
// return the same cell.
func (c *Context) nearestUnblockedCell(t Terrain, p latlon.LatLon, maxRings int) (hexgrid.Cell, bool) {
	origin := c.cellAt(t, p)
	if !t.IsBlocked(origin) {
		return origin, true
	}

	for k := 1; k <= maxRings; k++ {
		var best hexgrid.Cell
		bestDist := -1.0
		for _, cell := range c.grid.Ring(origin, k) {
			if t.IsBlocked(cell) {
				continue
			}
			d := c.DistanceTo(p, c.grid.Center(cell))
			if bestDist < 0 || d < bestDist || (d == bestDist && cell < best) {
				best = cell
				bestDist = d
			}
		}
		if bestDist >= 0 {
			return best, true
		}
	}
	return 0, false
}

// snapToWater moves a waypoint that tests as land to the nearest reachable
// water point: first by stepping outward along the hint bearing, then by
// spiraling for the nearest open cell and bisecting the shoreline crossing
// on the way to it. moved reports whether the original point was on land.
func (c *Context) snapToWater(ctx context.Context, t Terrain, p latlon.LatLon, hint float64) (snapped latlon.LatLon, moved bool, err error) {
	if !c.blockedAt(t, p) {
		return p, false, nil
	}

	step := c.grid.EdgeLength(t.Resolution())
	if step <= 0 {
		step = c.params.SampleSpacing
	}

	// outward along the hint bearing in fixed increments
	for d := step; d <= c.params.SnapMaxDistance; d += step {
		if err := ctx.Err(); err != nil {
			return latlon.LatLon{}, false, err
		}
		q := c.Destination(p, hint, d)
		if !c.blockedAt(t, q) {
			log.Debugf("Snapped along hint bearing %.0f° at %.0f m", hint, d)
			return c.settleOffshore(t, p, q, hint), true, nil
		}
	}

	// ring spiral from the point's own cell
	cell, ok := c.nearestUnblockedCell(t, p, c.snapMaxRings(t))
	if !ok {
		return latlon.LatLon{}, false, ErrNoWaterNodeNear
	}
	target := c.grid.Center(cell)
	bearing := c.BearingTo(p, target)

	// walk toward the open cell for the first clear point
	dist := c.DistanceTo(p, target)
	open := target
	for d := step; d < dist; d += step {
		q := c.Destination(p, bearing, d)
		if !c.blockedAt(t, q) {
			open = q
			break
		}
	}

	log.Debugf("Snapped by spiral to cell %s", hexgrid.CellToString(cell))
	return c.settleOffshore(t, p, open, bearing), true, nil
}

// settleOffshore tightens the land-water crossing between a blocked point
// and a clear one by bisection, then offsets the result a fixed safety
// distance further into water along the approach bearing.
func (c *Context) settleOffshore(t Terrain, blocked, open latlon.LatLon, bearing float64) latlon.LatLon {
	for c.DistanceTo(blocked, open) > snapTolerance {
		mid := c.Intermediate(blocked, open, 0.5)
		if c.blockedAt(t, mid) {
			blocked = mid
		} else {
			open = mid
		}
	}

	offset := c.Destination(open, bearing, c.params.SafetyOffset)
	if c.blockedAt(t, offset) {
		// offsetting ran into the far shore of a narrow channel
		return open
	}
	return offset
}

// DockLeg is the short connector from an original on-land waypoint to its
// snapped water point. Waypoint is the index of the input point it anchors;
// interior waypoints produce dock legs too, and without the index a client
// cannot tell which one a middle dock leg belongs to.
type DockLeg struct {
	Waypoint int           `json:"waypoint"`
	From     latlon.LatLon `json:"from"`
	To       latlon.LatLon `json:"to"`
}
