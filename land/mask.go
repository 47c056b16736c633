package land

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	log "github.com/sirupsen/logrus"

	"github.com/chadlanoway/Bottle-of-Rhumb/hexgrid"
)

// Mask is an immutable approximate set of land cells. It may report a water
// cell as land but is built never to miss a land cell at the resolutions it
// serves. A loaded mask is read-only and safe to share across requests.
type Mask struct {
	filter      *bloom.BloomFilter
	resolutions map[int]bool
}

type maskFile struct {
	Resolutions []int
	Filter      *bloom.BloomFilter
}

// NewMask builds a mask from land cells. The resolutions the mask serves are
// taken from the cells themselves.
func NewMask(cells []hexgrid.Cell, fpRate float64) *Mask {
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 1e-4
	}
	n := uint(len(cells))
	if n == 0 {
		n = 1
	}
	m := &Mask{
		filter:      bloom.NewWithEstimates(n, fpRate),
		resolutions: make(map[int]bool),
	}
	grid := hexgrid.H3Grid{}
	for _, c := range cells {
		m.filter.Add(cellKey(c))
		m.resolutions[grid.Resolution(c)] = true
	}
	return m
}

// Contains runs the base probabilistic test for one cell.
func (m *Mask) Contains(c hexgrid.Cell) bool {
	return m.filter.Test(cellKey(c))
}

// Serves reports whether the mask was built with cells at res.
func (m *Mask) Serves(res int) bool {
	return m.resolutions[res]
}

func (m *Mask) Resolutions() []int {
	res := make([]int, 0, len(m.resolutions))
	for r := range m.resolutions {
		res = append(res, r)
	}
	return res
}

// LoadMask reads a serialized mask from file.
func LoadMask(file string) (*Mask, error) {
	f, err := os.Open(file)
	if err != nil {
		log.Errorf("Error reading mask file '%s'", file)
		return nil, err
	}
	defer f.Close()

	var mf maskFile
	if err := gob.NewDecoder(f).Decode(&mf); err != nil {
		return nil, fmt.Errorf("decode mask file '%s': %w", file, err)
	}
	m := &Mask{
		filter:      mf.Filter,
		resolutions: make(map[int]bool, len(mf.Resolutions)),
	}
	for _, r := range mf.Resolutions {
		m.resolutions[r] = true
	}
	return m, nil
}

// Save writes the mask to file in the format LoadMask reads.
func (m *Mask) Save(file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	mf := maskFile{
		Resolutions: m.Resolutions(),
		Filter:      m.filter,
	}
	if err := gob.NewEncoder(f).Encode(&mf); err != nil {
		return fmt.Errorf("encode mask file '%s': %w", file, err)
	}
	return nil
}

func cellKey(c hexgrid.Cell) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(c))
	return b[:]
}
