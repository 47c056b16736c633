package route

import (
	"math"

	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// minChordSamples keeps very short segments from being under-sampled.
const minChordSamples = 5

// chordSamples returns the number of intervals needed so consecutive samples
// along a-b are no farther apart than the configured spacing.
func (c *Context) chordSamples(a, b latlon.LatLon) int {
	n := int(math.Ceil(c.DistanceTo(a, b) / c.params.SampleSpacing))
	if n < minChordSamples {
		n = minChordSamples
	}
	return n
}

// chordBlocked walks the great circle between a and b and reports whether
// any sample falls in a blocked cell. This is the single correctness gate
// for every accepted edge and leg.
func (c *Context) chordBlocked(t Terrain, a, b latlon.LatLon) bool {
	n := c.chordSamples(a, b)
	for i := 0; i <= n; i++ {
		p := c.Intermediate(a, b, float64(i)/float64(n))
		if c.blockedAt(t, p) {
			return true
		}
	}
	return false
}

// firstBlockedSample returns the first sample along a-b that is blocked.
// When none is (the caller normally only asks for chords known to be
// blocked) it falls back to the midpoint.
func (c *Context) firstBlockedSample(t Terrain, a, b latlon.LatLon) latlon.LatLon {
	n := c.chordSamples(a, b)
	for i := 0; i <= n; i++ {
		p := c.Intermediate(a, b, float64(i)/float64(n))
		if c.blockedAt(t, p) {
			return p
		}
	}
	return c.Intermediate(a, b, 0.5)
}

// chordPoints samples a-b at roughly every meters per point, endpoints
// included. Used for the fast path, where the chord itself is the leg.
func (c *Context) chordPoints(a, b latlon.LatLon, every float64) []latlon.LatLon {
	n := int(math.Ceil(c.DistanceTo(a, b) / every))
	if n < 1 {
		n = 1
	}
	pts := make([]latlon.LatLon, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, c.Intermediate(a, b, float64(i)/float64(n)))
	}
	return pts
}
