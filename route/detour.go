package route

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// fan bearings relative to the blocked chord, tried in order at every radius
var fanOffsets = []float64{90, -90, 60, -60, 120, -120}

const (
	detourStartRadius = 2e3   // meters
	detourMaxRadius   = 512e3 // meters
)

// detour is the last-resort tier. It pivots around the first blocked sample
// of the a-b chord, scanning a perpendicular fan at geometrically growing
// radii for a via point with clear chords to both ends. When the fan fails
// the chord is split at its midpoint and both halves recurse with a hard
// depth limit, so the strategy always terminates.
func (c *Context) detour(ctx context.Context, t Terrain, a, b latlon.LatLon, depth int) ([]latlon.LatLon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.chordBlocked(t, a, b) {
		return []latlon.LatLon{a, b}, nil
	}

	pivot := c.firstBlockedSample(t, a, b)
	base := c.BearingTo(a, b)

	for radius := detourStartRadius; radius <= detourMaxRadius; radius *= 2 {
		// every radius probes two full chords per offset, which on long
		// legs is thousands of samples; stay responsive to cancellation
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, offset := range fanOffsets {
			c.ops++
			via := c.Destination(pivot, latlon.Wrap360(base+offset), radius)
			if c.blockedAt(t, via) {
				continue
			}
			if c.chordBlocked(t, a, via) || c.chordBlocked(t, via, b) {
				continue
			}
			log.Debugf("Detour via point found at %.0f m, offset %.0f°", radius, offset)
			return []latlon.LatLon{a, via, b}, nil
		}
	}

	if depth >= c.params.MaxDetourDepth {
		log.Debugf("Detour gave up at depth %d", depth)
		return nil, ErrNoPathFound
	}

	mid := c.Intermediate(a, b, 0.5)
	if c.blockedAt(t, mid) {
		// a blocked split point dooms both halves; pull it to open water
		cell, ok := c.nearestUnblockedCell(t, mid, c.snapMaxRings(t))
		if !ok {
			return nil, ErrNoPathFound
		}
		mid = c.grid.Center(cell)
	}

	left, err := c.detour(ctx, t, a, mid, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := c.detour(ctx, t, mid, b, depth+1)
	if err != nil {
		return nil, err
	}
	return append(left, right[1:]...), nil
}
