package route

import "math"

// Params govern one route computation. Zero fields fall back to defaults.
type Params struct {
	Resolution      int     // fine hex resolution, final path granularity
	MacroResolution int     // coarse resolution for the skeleton planner
	Dilation        int     // blocked-set safety rings
	SampleSpacing   float64 // meters between chord samples
	CorridorStep    float64 // degrees between corridor scan samples
	CorridorPadding float64 // km of ring padding around corridor cells
	MaxExpansions   int     // fine search hard cap
	BeamWidth       int     // macro frontier width
	MaxDetourDepth  int     // detour split recursion limit
	SnapMaxDistance float64 // meters an endpoint may travel to reach water
	SafetyOffset    float64 // meters past the shoreline a snap lands
}

const (
	defaultResolution      = 7
	defaultMacroDelta      = 3 // macro = fine - delta
	defaultSampleSpacing   = 500.0
	defaultCorridorStep    = 0.05
	defaultCorridorPadding = 5.0
	defaultMaxExpansions   = 100000
	defaultBeamWidth       = 6
	defaultMaxDetourDepth  = 4
	defaultSnapMaxDistance = 50e3
	defaultSafetyOffset    = 200.0
)

// WithDefaults fills zero fields in. Callers that need the effective
// resolution before running (to build oracles) apply it themselves; Run
// applies it either way.
func (p Params) WithDefaults() Params {
	if p.Resolution <= 0 {
		p.Resolution = defaultResolution
	}
	if p.MacroResolution <= 0 || p.MacroResolution >= p.Resolution {
		p.MacroResolution = p.Resolution - defaultMacroDelta
		if p.MacroResolution < 0 {
			p.MacroResolution = 0
		}
	}
	if p.Dilation < 0 {
		p.Dilation = 0
	}
	if p.SampleSpacing <= 0 {
		p.SampleSpacing = defaultSampleSpacing
	}
	if p.CorridorStep <= 0 {
		p.CorridorStep = defaultCorridorStep
	}
	if p.CorridorPadding <= 0 {
		p.CorridorPadding = defaultCorridorPadding
	}
	if p.MaxExpansions <= 0 {
		p.MaxExpansions = defaultMaxExpansions
	}
	if p.BeamWidth <= 0 {
		p.BeamWidth = defaultBeamWidth
	}
	if p.MaxDetourDepth <= 0 {
		p.MaxDetourDepth = defaultMaxDetourDepth
	}
	if p.SnapMaxDistance <= 0 {
		p.SnapMaxDistance = defaultSnapMaxDistance
	}
	if p.SafetyOffset <= 0 {
		p.SafetyOffset = defaultSafetyOffset
	}
	return p
}

// paddingRings converts the corridor padding distance to neighbor rings at
// the given edge length.
func (p Params) paddingRings(edgeM float64) int {
	if edgeM <= 0 {
		return 1
	}
	rings := int(math.Ceil(p.CorridorPadding * 1000.0 / edgeM))
	if rings < 1 {
		rings = 1
	}
	return rings
}
