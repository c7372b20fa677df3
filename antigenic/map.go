// Package antigenic holds the long- and short-term cross-reactivity maps
// between strains.
//
// Both maps are square n x n matrices stored row-major: the weight of an
// infection with strain s on a titre measured against strain m sits at
// data[m*n+s].
package antigenic

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/lucasmaystre/titrekick/params"
	"github.com/lucasmaystre/titrekick/utils"
)

var (
	// ErrShape and ErrWeight are configuration errors.
	ErrShape  = fmt.Errorf("%w: antigenic map is not square", params.ErrConfig)
	ErrWeight = fmt.Errorf("%w: antigenic map weight is negative or NaN", params.ErrConfig)
	ErrIndex  = errors.New("strain index out of range")
)

// View is a bounds-checked read-only view over one flattened map.
type View struct {
	mat blas64.General
}

func newView(n int, data []float64) (View, error) {
	if n <= 0 || len(data) != n*n {
		return View{}, fmt.Errorf("%w: %d values for %d strains", ErrShape, len(data), n)
	}
	for i, w := range data {
		if w < 0 || math.IsNaN(w) {
			return View{}, fmt.Errorf("%w: %v at row %d, column %d", ErrWeight, w, i/n, i%n)
		}
	}
	return View{mat: blas64.General{
		Rows:   n,
		Cols:   n,
		Stride: n,
		Data:   data,
	}}, nil
}

// At returns the weight of infecting strain s on measured strain m.
// It panics if either index is out of range.
func (v View) At(m, s int) float64 {
	if uint(m) >= uint(v.mat.Rows) || uint(s) >= uint(v.mat.Cols) {
		panic(fmt.Errorf("%w: (%d, %d) in %d strains", ErrIndex, m, s, v.mat.Rows))
	}
	return v.mat.Data[m*v.mat.Stride+s]
}

// Row returns the weights of every infecting strain on measured strain m.
// The slice aliases the map and must not be modified.
func (v View) Row(m int) []float64 {
	if uint(m) >= uint(v.mat.Rows) {
		panic(fmt.Errorf("%w: row %d in %d strains", ErrIndex, m, v.mat.Rows))
	}
	off := m * v.mat.Stride
	return v.mat.Data[off : off+v.mat.Cols : off+v.mat.Cols]
}

func (v View) Strains() int {
	return v.mat.Rows
}

type Map struct {
	Long  View
	Short View
}

// New wraps flattened long- and short-term maps for n strains. The slices
// are not copied.
func New(n int, long, short []float64) (*Map, error) {
	l, err := newView(n, long)
	if err != nil {
		return nil, fmt.Errorf("long-term map: %w", err)
	}
	s, err := newView(n, short)
	if err != nil {
		return nil, fmt.Errorf("short-term map: %w", err)
	}
	return &Map{Long: l, Short: s}, nil
}

// FromDense copies two gonum matrices into a new Map.
func FromDense(long, short mat.Matrix) (*Map, error) {
	r, c := long.Dims()
	if r == 0 || r != c {
		return nil, fmt.Errorf("long-term map: %w: %dx%d", ErrShape, r, c)
	}
	if sr, sc := short.Dims(); sr != r || sc != c {
		return nil, fmt.Errorf("short-term map: %w: %dx%d, want %dx%d", ErrShape, sr, sc, r, c)
	}
	return New(r, flatten(long), flatten(short))
}

func flatten(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Copy(m)
	return out.RawMatrix().Data
}

// Identity is the map without cross-reactivity: an infection only boosts
// titres against its own strain, identically for both components.
func Identity(n int) *Map {
	m, err := FromDense(utils.Eye(n), utils.Eye(n))
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Map) Strains() int {
	return m.Long.Strains()
}

// Contains reports whether s is a valid strain index for the map.
func (m *Map) Contains(s int) bool {
	return s >= 0 && s < m.Strains()
}
