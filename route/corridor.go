package route

import (
	"math"

	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// corridor is the legal cell universe for one leg. All members share one
// resolution; it is built per leg and discarded with it.
type corridor map[hexgrid.Cell]bool

// corridorAlongChord collects unblocked cells sampled along the great circle
// a-b, padded by neighbor rings so sparse samples cannot disconnect the
// search graph.
func (c *Context) corridorAlongChord(t Terrain, a, b latlon.LatLon, rings int) corridor {
	cor := make(corridor)

	// sample at ring-sized spacing so consecutive disks overlap
	edge := c.grid.EdgeLength(t.Resolution())
	spacing := edge * float64(rings)
	if spacing <= 0 {
		spacing = c.params.SampleSpacing
	}
	n := int(math.Ceil(c.DistanceTo(a, b) / spacing))
	if n < minChordSamples {
		n = minChordSamples
	}
	for i := 0; i <= n; i++ {
		p := c.Intermediate(a, b, float64(i)/float64(n))
		cell := c.cellAt(t, p)
		if !t.IsBlocked(cell) {
			cor[cell] = true
		}
	}

	return c.padCorridor(t, cor, rings)
}

// corridorBBox scans a padded bounding box around a and b in fixed angular
// steps, keeping unblocked cells.
func (c *Context) corridorBBox(t Terrain, a, b latlon.LatLon, padDeg float64, rings int) corridor {
	minLat := math.Min(a.Lat, b.Lat) - padDeg
	maxLat := math.Max(a.Lat, b.Lat) + padDeg

	lonA, lonB := a.Lon, b.Lon
	span := math.Abs(lonB - lonA)
	if span > 180 {
		// cross the antimeridian the short way round
		if lonA < lonB {
			lonA += 360
		} else {
			lonB += 360
		}
	}
	minLon := math.Min(lonA, lonB) - padDeg
	maxLon := math.Max(lonA, lonB) + padDeg

	step := c.params.CorridorStep
	cor := make(corridor)
	for lat := minLat; lat <= maxLat; lat += step {
		for lon := minLon; lon <= maxLon; lon += step {
			p := latlon.LatLon{Lat: lat, Lon: latlon.NormalizeLon(lon)}
			cell := c.cellAt(t, p)
			if cor[cell] {
				continue
			}
			if !t.IsBlocked(cell) {
				cor[cell] = true
			}
		}
	}

	return c.padCorridor(t, cor, rings)
}

// padCorridor expands every member by k neighbor rings. Padding cells are
// admitted even when blocked; the search itself re-checks blockage, and the
// extra members only bridge sampling gaps.
func (c *Context) padCorridor(t Terrain, cor corridor, rings int) corridor {
	if rings <= 0 {
		return cor
	}
	padded := make(corridor, len(cor)*(1+3*rings*(rings+1)))
	for cell := range cor {
		for _, d := range c.grid.Disk(cell, rings) {
			padded[d] = true
		}
	}
	return padded
}
