package land

import (
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
	"github.com/chadlanoway/Bottle-of-Rhumb/latlon"
)

// ErrMaskNotReady is returned when an oracle is requested before a mask is
// loaded, or at a resolution the mask does not serve. Callers must treat it
// as fatal for the request.
var ErrMaskNotReady = errors.New("land: mask not ready")

// Mode is the polarity of the mask: whether a filter hit means land or,
// for a mask built inverted, water.
type Mode int

const (
	ModeLand Mode = iota
	ModeWater
)

func (m Mode) String() string {
	if m == ModeWater {
		return "WATER"
	}
	return "LAND"
}

// Calibration records how the polarity was resolved. Ambiguous means both
// reference probes agreed and the conservative LAND default was kept.
type Calibration struct {
	Mode        Mode   `json:"-"`
	ModeName    string `json:"mode"`
	InteriorHit bool   `json:"interiorHit"`
	OceanHit    bool   `json:"oceanHit"`
	Ambiguous   bool   `json:"ambiguous"`
}

// Probes are two geographically disjoint reference points: one deep in a
// continental interior, one in mid ocean.
type Probes struct {
	Interior latlon.LatLon
	Ocean    latlon.LatLon
}

// DefaultProbes are central Mongolia and the South Pacific.
var DefaultProbes = Probes{
	Interior: latlon.LatLon{Lat: 46.8, Lon: 103.8},
	Ocean:    latlon.LatLon{Lat: -40.0, Lon: -140.0},
}

type Config struct {
	Resolution   int
	Dilation     int // safety rings around land
	MinNeighbors int // noise filter threshold, default 3
	CacheSize    int
	Probes       Probes
	Overrides    map[hexgrid.Cell]bool // cells forced to land
}

// Oracle answers blocked-cell queries for one mask + resolution + dilation
// configuration. Results are stable for its lifetime, so they are memoized.
// An oracle belongs to one request; the mask behind it is shared.
type Oracle struct {
	mask *Mask
	grid hexgrid.Grid
	cfg  Config
	cal  Calibration
	memo *lru.Cache[hexgrid.Cell, bool]
}

// NewOracle builds and calibrates an oracle. It fails with ErrMaskNotReady
// when no mask is loaded or the mask does not serve the resolution.
func NewOracle(mask *Mask, grid hexgrid.Grid, cfg Config) (*Oracle, error) {
	if mask == nil || mask.filter == nil {
		return nil, ErrMaskNotReady
	}
	if !mask.Serves(cfg.Resolution) {
		return nil, ErrMaskNotReady
	}
	if cfg.MinNeighbors <= 0 {
		cfg.MinNeighbors = 3
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1 << 16
	}
	if cfg.Probes == (Probes{}) {
		cfg.Probes = DefaultProbes
	}

	memo, err := lru.New[hexgrid.Cell, bool](cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	o := &Oracle{
		mask: mask,
		grid: grid,
		cfg:  cfg,
		memo: memo,
	}
	o.calibrate()
	return o, nil
}

// calibrate resolves the mask polarity once, against the raw filter. Probes
// land in widely separated cells, so exactly one of them should hit.
func (o *Oracle) calibrate() {
	interior := o.grid.CellAt(o.cfg.Probes.Interior, o.cfg.Resolution)
	ocean := o.grid.CellAt(o.cfg.Probes.Ocean, o.cfg.Resolution)

	cal := Calibration{
		Mode:        ModeLand,
		InteriorHit: o.mask.Contains(interior),
		OceanHit:    o.mask.Contains(ocean),
	}
	switch {
	case cal.InteriorHit && !cal.OceanHit:
		cal.Mode = ModeLand
	case cal.OceanHit && !cal.InteriorHit:
		cal.Mode = ModeWater
	default:
		cal.Ambiguous = true
		log.Warnf("Ambiguous mask calibration at res %d (interior hit %t, ocean hit %t), keeping LAND mode",
			o.cfg.Resolution, cal.InteriorHit, cal.OceanHit)
	}
	cal.ModeName = cal.Mode.String()
	o.cal = cal

	log.Debugf("Mask calibrated at res %d: mode %s", o.cfg.Resolution, cal.Mode)
}

func (o *Oracle) Calibration() Calibration {
	return o.cal
}

func (o *Oracle) Resolution() int {
	return o.cfg.Resolution
}

// landHit is the polarity-adjusted base test plus overrides.
func (o *Oracle) landHit(c hexgrid.Cell) bool {
	if o.cfg.Overrides[c] {
		return true
	}
	hit := o.mask.Contains(c)
	if o.cal.Mode == ModeWater {
		hit = !hit
	}
	return hit
}

// landLike applies the noise filter: a cell only counts as land when enough
// of its immediate neighbors agree, which suppresses isolated filter
// false positives. Overridden cells always count.
func (o *Oracle) landLike(c hexgrid.Cell) bool {
	if o.cfg.Overrides[c] {
		return true
	}
	if !o.landHit(c) {
		return false
	}
	n := 0
	for _, nb := range o.grid.Neighbors(c) {
		if o.landHit(nb) {
			n++
		}
	}
	return n >= o.cfg.MinNeighbors
}

// IsBlocked reports whether c or any cell within the dilation radius tests
// as land.
func (o *Oracle) IsBlocked(c hexgrid.Cell) bool {
	if v, ok := o.memo.Get(c); ok {
		return v
	}

	blocked := false
	if o.cfg.Dilation <= 0 {
		blocked = o.landLike(c)
	} else {
		for _, d := range o.grid.Disk(c, o.cfg.Dilation) {
			if o.landLike(d) {
				blocked = true
				break
			}
		}
	}

	o.memo.Add(c, blocked)
	return blocked
}
