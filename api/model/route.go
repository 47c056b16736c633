package model

import "github.com/chadlanoway/Bottle-of-Rhumb/route"

// Route is one route computation request. Waypoints are [lng, lat] pairs in
// degrees, at least two of them.
type Route struct {
	Waypoints [][]float64 `json:"waypoints"`
	Params    Params      `json:"params"`
}

type Params struct {
	Resolution      int      `json:"resolution"`
	MacroResolution int      `json:"macroResolution"`
	Dilation        int      `json:"dilation"`
	SampleSpacing   float64  `json:"sampleSpacing"`   // meters
	CorridorStep    float64  `json:"corridorStep"`    // degrees
	CorridorPadding float64  `json:"corridorPadding"` // km
	MaxExpansions   int      `json:"maxExpansions"`
	LandOverrides   []string `json:"landOverrides"` // cells forced to land
}

// Path is the response: the computed route as a GeoJSON-style LineString,
// coordinates in [lng, lat] order.
type Path struct {
	Type        string        `json:"type"`
	Coordinates [][]float64   `json:"coordinates"`
	DockLegs    []DockLeg     `json:"dockLegs,omitempty"`
	Summary     route.Summary `json:"summary"`
}

type DockLeg struct {
	Waypoint int       `json:"waypoint"`
	From     []float64 `json:"from"`
	To       []float64 `json:"to"`
}

type Error struct {
	Error string `json:"error"`
}
