package route

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
	"github.com/chadlanoway/Bottle-of-Rhumb/xmpp"
)

// jointEpsilon collapses duplicate points where legs meet.
const jointEpsilon = 1e-9

// Summary describes how a route was computed.
type Summary struct {
	Start    time.Time      `json:"start"`
	Duration float64        `json:"duration"` // seconds
	Legs     int            `json:"legs"`
	Distance float64        `json:"distance"` // meters
	Tiers    map[string]int `json:"tiers"`
	Snapped  int            `json:"snapped"`
	Ops      uint64         `json:"ops"`
}

// Result is the final output of one multi-leg request, immutable once
// produced. Path always has at least two points.
type Result struct {
	Path     []latlon.LatLon `json:"path"`
	DockLegs []DockLeg       `json:"dockLegs,omitempty"`
	Summary  Summary         `json:"summary"`
}

// Run computes a water-only path visiting the waypoints in order. Tiers per
// leg, cheapest first: direct chord, fine search, macro skeleton with
// refinement, recursive detour. A leg no tier can solve fails the whole
// request; a useful route is end-to-end or nothing.
func Run(ctx context.Context, grid hexgrid.Grid, fine, macro Terrain, waypoints []latlon.LatLon, params Params, xm *xmpp.Xmpp) (*Result, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 waypoints, got %d", ErrInvalidInput, len(waypoints))
	}

	c := NewContext(grid, fine, macro, params)
	started := time.Now()

	points := make([]latlon.LatLon, len(waypoints))
	for i, w := range waypoints {
		points[i] = w.Normalized()
	}

	result := &Result{
		Summary: Summary{
			Start: started,
			Legs:  len(points) - 1,
			Tiers: make(map[string]int),
		},
	}

	// resolve every waypoint to water once, shared by its adjacent legs
	snapped := make([]latlon.LatLon, len(points))
	for i, p := range points {
		hint := i + 1
		if i == len(points)-1 {
			hint = i - 1
		}
		s, moved, err := c.snapToWater(ctx, c.fine, p, c.BearingTo(p, points[hint]))
		if err != nil {
			notify(xm, fmt.Sprintf("route failed: waypoint %d unreachable", i))
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
		snapped[i] = s
		if moved {
			result.Summary.Snapped++
			result.DockLegs = append(result.DockLegs, DockLeg{Waypoint: i, From: p, To: s})
			log.Debugf("Waypoint %d snapped %.0f m to water", i, c.DistanceTo(p, s))
		}
	}

	// the user's literal click stays visually anchored at the route ends
	if !points[0].EqualsWithin(snapped[0], jointEpsilon) {
		result.Path = append(result.Path, points[0])
	}

	for i := 0; i+1 < len(snapped); i++ {
		leg, tier, err := c.leg(ctx, snapped[i], snapped[i+1])
		if err != nil {
			notify(xm, fmt.Sprintf("route failed on leg %d: %v", i, err))
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		result.Summary.Tiers[tier]++
		log.Debugf("Leg %d solved by %s tier (%d points)", i, tier, len(leg))

		result.Path = appendLeg(result.Path, leg)
	}

	last := len(points) - 1
	if !points[last].EqualsWithin(snapped[last], jointEpsilon) {
		result.Path = append(result.Path, points[last])
	}

	for i := 0; i+1 < len(result.Path); i++ {
		result.Summary.Distance += c.DistanceTo(result.Path[i], result.Path[i+1])
	}
	result.Summary.Duration = time.Since(started).Seconds()
	result.Summary.Ops = c.Ops()

	log.Infof("Route of %d legs, %.1f km, took %.2fs (%d ops)",
		result.Summary.Legs, result.Summary.Distance/1000.0, result.Summary.Duration, result.Summary.Ops)
	notify(xm, fmt.Sprintf("route ok: %d legs, %.1f km, %.2fs",
		result.Summary.Legs, result.Summary.Distance/1000.0, result.Summary.Duration))

	return result, nil
}

// leg resolves one waypoint pair, falling through the tiers in order. Every
// fallback changes strategy or parameters, never retrying identically.
func (c *Context) leg(ctx context.Context, a, b latlon.LatLon) ([]latlon.LatLon, string, error) {
	if !c.chordBlocked(c.fine, a, b) {
		return c.chordPoints(a, b, 32*c.params.SampleSpacing), "chord", nil
	}

	pts, err := c.fineSearch(ctx, a, b)
	if err == nil {
		return pts, "fine", nil
	}
	if ctxDone(err) {
		return nil, "", err
	}
	log.Debugf("Fine tier failed: %v", err)

	pts, err = c.macroRoute(ctx, a, b)
	if err == nil {
		return c.simplify(c.fine, pts), "macro", nil
	}
	if ctxDone(err) {
		return nil, "", err
	}
	log.Debugf("Macro tier failed: %v", err)

	pts, err = c.detour(ctx, c.fine, a, b, 0)
	if err == nil {
		return pts, "detour", nil
	}
	if ctxDone(err) {
		return nil, "", err
	}
	log.Debugf("Detour tier failed: %v", err)

	return nil, "", ErrNoPathFound
}

func appendLeg(path, leg []latlon.LatLon) []latlon.LatLon {
	if len(path) > 0 && len(leg) > 0 && path[len(path)-1].EqualsWithin(leg[0], jointEpsilon) {
		leg = leg[1:]
	}
	return append(path, leg...)
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func notify(xm *xmpp.Xmpp, msg string) {
	if xm == nil {
		return
	}
	xm.Send(msg)
}
