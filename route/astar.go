package route

import (
	"container/heap"
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// searchNode is one frontier entry. Nodes are owned by a single search and
// discarded with it.
type searchNode struct {
	cell  hexgrid.Cell
	f     float64
	index int
}

type frontier []*searchNode

func (fr frontier) Len() int { return len(fr) }

func (fr frontier) Less(i, j int) bool {
	return fr[i].f < fr[j].f
}

func (fr frontier) Swap(i, j int) {
	fr[i], fr[j] = fr[j], fr[i]
	fr[i].index = i
	fr[j].index = j
}

func (fr *frontier) Push(x interface{}) {
	n := *fr
	node := x.(*searchNode)
	node.index = len(n)
	*fr = append(n, node)
}

func (fr *frontier) Pop() interface{} {
	old := *fr
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*fr = old[:n-1]
	return node
}

// ctxCheckInterval is how many expansions pass between cancellation checks.
const ctxCheckInterval = 1024

// astar runs a shortest-path search over hex cells from from to to,
// restricted to the allowed corridor when one is given. Edges connect a cell
// to its immediate neighbors; each accepted edge additionally passes a chord
// check between cell centers, because two open centers can still be joined
// across a thin land spit. Cost and heuristic are great-circle distances, so
// the heuristic is admissible.
func (c *Context) astar(ctx context.Context, t Terrain, from, to hexgrid.Cell, allowed corridor) ([]hexgrid.Cell, error) {
	if allowed != nil {
		allowed[from] = true
		allowed[to] = true
	}
	goalCenter := c.grid.Center(to)

	gScore := map[hexgrid.Cell]float64{from: 0}
	parent := make(map[hexgrid.Cell]hexgrid.Cell)
	closed := make(map[hexgrid.Cell]bool)

	pq := make(frontier, 0, 64)
	heap.Init(&pq)
	heap.Push(&pq, &searchNode{cell: from, f: c.DistanceTo(c.grid.Center(from), goalCenter)})

	expansions := 0
	for pq.Len() > 0 {
		node := heap.Pop(&pq).(*searchNode)
		if closed[node.cell] {
			continue
		}
		closed[node.cell] = true

		if node.cell == to {
			return reconstruct(parent, from, to), nil
		}

		expansions++
		c.ops++
		if expansions%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if expansions > c.params.MaxExpansions {
			log.Debugf("Search stopped after %d expansions", expansions)
			return nil, ErrSearchBudget
		}

		center := c.grid.Center(node.cell)
		for _, nb := range c.grid.Neighbors(node.cell) {
			if closed[nb] {
				continue
			}
			if allowed != nil && !allowed[nb] {
				continue
			}
			if t.IsBlocked(nb) {
				continue
			}

			nbCenter := c.grid.Center(nb)
			ng := gScore[node.cell] + c.DistanceTo(center, nbCenter)
			if old, ok := gScore[nb]; ok && old <= ng {
				continue
			}
			if c.chordBlocked(t, center, nbCenter) {
				continue
			}

			gScore[nb] = ng
			parent[nb] = node.cell
			heap.Push(&pq, &searchNode{cell: nb, f: ng + c.DistanceTo(nbCenter, goalCenter)})
		}
	}

	return nil, ErrNoPathFound
}

func reconstruct(parent map[hexgrid.Cell]hexgrid.Cell, from, to hexgrid.Cell) []hexgrid.Cell {
	path := []hexgrid.Cell{to}
	for at := to; at != from; {
		at = parent[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// fineSearch resolves one leg at full resolution. Corridor widths grow over
// successive clean-slate attempts: chord corridor, padded bounding box, then
// the unconstrained grid. Every fallback changes a parameter, so no attempt
// can fail identically to the previous one.
func (c *Context) fineSearch(ctx context.Context, a, b latlon.LatLon) ([]latlon.LatLon, error) {
	t := c.fine
	from := c.cellAt(t, a)
	to := c.cellAt(t, b)
	if from == to {
		return []latlon.LatLon{a, b}, nil
	}

	rings := c.params.paddingRings(c.grid.EdgeLength(t.Resolution()))
	padDeg := c.params.CorridorPadding / 111.0

	attempts := []struct {
		name  string
		build func() corridor
	}{
		{"chord corridor", func() corridor { return c.corridorAlongChord(t, a, b, rings) }},
		{"bbox corridor", func() corridor { return c.corridorBBox(t, a, b, padDeg, 2*rings) }},
		{"unconstrained", func() corridor { return nil }},
	}

	var lastErr error
	for _, attempt := range attempts {
		cells, err := c.astar(ctx, t, from, to, attempt.build())
		if err == nil {
			pts := make([]latlon.LatLon, 0, len(cells)+2)
			pts = append(pts, a)
			for _, cell := range cells {
				pts = append(pts, c.grid.Center(cell))
			}
			pts = append(pts, b)
			return c.simplify(t, pts), nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		log.Debugf("Fine search (%s) failed: %v", attempt.name, err)
		lastErr = err
	}
	return nil, lastErr
}
