package route

import "github.com/chadlanoway/Bottle-of-Rhumb/latlon"

// simplify collapses grid zig-zag with a line-of-sight pass: points are
// skipped as long as the chord from the current anchor stays clear, so the
// simplified path can never introduce a land crossing the original did not
// have.
func (c *Context) simplify(t Terrain, pts []latlon.LatLon) []latlon.LatLon {
	if len(pts) <= 2 {
		return pts
	}

	out := make([]latlon.LatLon, 0, len(pts))
	out = append(out, pts[0])

	anchor := 0
	for i := anchor + 2; i < len(pts); i++ {
		if c.chordBlocked(t, pts[anchor], pts[i]) {
			out = append(out, pts[i-1])
			anchor = i - 1
		}
	}
	out = append(out, pts[len(pts)-1])

	return out
}
