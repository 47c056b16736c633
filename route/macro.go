package route

import (
	"context"
	"errors"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// beamNode is one macro frontier candidate; the parent chain is the
// skeleton so far.
type beamNode struct {
	cell    hexgrid.Cell
	parent  *beamNode
	bearing float64
	score   float64
}

const (
	// score penalty for a candidate whose straight chord to the goal
	// crosses land
	blockedChordPenalty = 5e6
	// meters of penalty per degree of deviation from the incoming bearing
	turnPenalty = 300.0
	// frontier counts as arrived within this many hex-steps of the goal
	macroArrivalSteps = 2
)

// macroSkeleton runs a coarse-resolution beam search from a to b and returns
// a low-detail list of waypoints for later refinement. Used when fine search
// is infeasible or failed.
func (c *Context) macroSkeleton(ctx context.Context, a, b latlon.LatLon) ([]latlon.LatLon, error) {
	t := c.macro
	if t == nil {
		return nil, ErrNoPathFound
	}

	start := c.cellAt(t, a)
	goal := c.cellAt(t, b)
	if start == goal {
		return []latlon.LatLon{a, b}, nil
	}

	// step budget: a few times the straight-line cell distance
	maxSteps := c.grid.Steps(start, goal)
	if maxSteps < 0 {
		maxSteps = int(c.DistanceTo(a, b) / c.grid.EdgeLength(t.Resolution()))
	}
	maxSteps = 4*maxSteps + 32

	frontier := []*beamNode{{cell: start, bearing: c.BearingTo(a, b)}}
	visited := map[hexgrid.Cell]bool{start: true}

	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var candidates []*beamNode
		for _, node := range frontier {
			center := c.grid.Center(node.cell)
			for _, nb := range c.grid.Neighbors(node.cell) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				if t.IsBlocked(nb) {
					continue
				}
				c.ops++

				nbCenter := c.grid.Center(nb)
				bearing := c.BearingTo(center, nbCenter)

				score := c.DistanceTo(nbCenter, b)
				if c.chordBlocked(t, nbCenter, b) {
					score += blockedChordPenalty
				}
				score += turnPenalty * turnAngle(node.bearing, bearing)

				candidates = append(candidates, &beamNode{
					cell:    nb,
					parent:  node,
					bearing: bearing,
					score:   score,
				})
			}
		}
		if len(candidates) == 0 {
			log.Debugf("Macro frontier emptied after %d steps", step)
			return nil, ErrNoPathFound
		}

		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].score < candidates[j].score
		})
		if len(candidates) > c.params.BeamWidth {
			candidates = candidates[:c.params.BeamWidth]
		}
		frontier = candidates

		for _, node := range frontier {
			if s := c.grid.Steps(node.cell, goal); s >= 0 && s <= macroArrivalSteps {
				return c.skeletonPoints(node, a, b), nil
			}
		}
	}

	log.Debugf("Macro search exhausted its %d step budget", maxSteps)
	return nil, ErrSearchBudget
}

// skeletonPoints walks the parent chain back to the start and returns the
// ordered waypoint list, endpoints included.
func (c *Context) skeletonPoints(node *beamNode, a, b latlon.LatLon) []latlon.LatLon {
	var cells []hexgrid.Cell
	for at := node; at != nil; at = at.parent {
		cells = append(cells, at.cell)
	}

	pts := make([]latlon.LatLon, 0, len(cells)+2)
	pts = append(pts, a)
	for i := len(cells) - 2; i >= 1; i-- { // skip start and arrival cells
		pts = append(pts, c.grid.Center(cells[i]))
	}
	pts = append(pts, b)
	return pts
}

// macroRoute plans a skeleton at coarse resolution and refines each
// consecutive pair with a fresh fine search; a pair that resists refinement
// falls back to the detour strategy for that sub-leg only.
func (c *Context) macroRoute(ctx context.Context, a, b latlon.LatLon) ([]latlon.LatLon, error) {
	skeleton, err := c.macroSkeleton(ctx, a, b)
	if err != nil {
		return nil, err
	}
	log.Debugf("Macro skeleton has %d points", len(skeleton))

	path := []latlon.LatLon{skeleton[0]}
	for i := 0; i+1 < len(skeleton); i++ {
		sub, err := c.fineSearch(ctx, skeleton[i], skeleton[i+1])
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			log.Debugf("Refining skeleton pair %d failed (%v), trying detour", i, err)
			sub, err = c.detour(ctx, c.fine, skeleton[i], skeleton[i+1], 0)
			if err != nil {
				return nil, err
			}
		}
		path = append(path, sub[1:]...)
	}
	return path, nil
}

// turnAngle returns the absolute angle in degrees between two bearings.
func turnAngle(from, to float64) float64 {
	d := math.Abs(latlon.Wrap360(to) - latlon.Wrap360(from))
	if d > 180 {
		d = 360 - d
	}
	return d
}
