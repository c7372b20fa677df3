package params

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrConfig is the category of every caller contract violation detected
	// at a kernel boundary.
	ErrConfig       = errors.New("invalid kernel configuration")
	ErrMissingParam = fmt.Errorf("%w: missing parameter", ErrConfig)
)

const (
	Mu         = "mu"
	MuShort    = "mu_short"
	Tau        = "tau"
	Wane       = "wane"
	Gradient   = "gradient"
	BoostLimit = "boost_limit"
)

// Theta is a named parameter set as handed over by the inference driver.
type Theta map[string]float64

// Get returns the named parameter or an error wrapping ErrMissingParam.
func (th Theta) Get(name string) (float64, error) {
	if val, ok := th[name]; ok {
		return val, nil
	}
	return 0.0, fmt.Errorf("%w %q", ErrMissingParam, name)
}

// getter collects the first lookup failure so that records can be filled
// in a single block.
type getter struct {
	theta Theta
	err   error
}

func (g *getter) get(name string) float64 {
	if g.err != nil {
		return 0.0
	}
	val, err := g.theta.Get(name)
	if err != nil {
		g.err = err
		return 0.0
	}
	if math.IsNaN(val) {
		g.err = fmt.Errorf("%w: parameter %q is NaN", ErrConfig, name)
	}
	return val
}

// Parameters of the base boosting model.
type Base struct {
	Mu      float64
	MuShort float64
}

func NewBase(theta Theta) (Base, error) {
	g := getter{theta: theta}
	p := Base{
		Mu:      g.get(Mu),
		MuShort: g.get(MuShort),
	}
	return p, g.err
}

// Parameters of the strain-dependent boosting model. The long-term boost
// comes from the group mapping instead of mu.
type StrainDependent struct {
	MuShort float64
	Tau     float64
}

func NewStrainDependent(theta Theta) (StrainDependent, error) {
	g := getter{theta: theta}
	p := StrainDependent{
		MuShort: g.get(MuShort),
		Tau:     g.get(Tau),
	}
	return p, g.err
}

// Parameters of the titre-dependent boosting model.
type TitreDependent struct {
	Mu         float64
	MuShort    float64
	Tau        float64
	Gradient   float64
	BoostLimit float64
	Wane       float64
}

func NewTitreDependent(theta Theta) (TitreDependent, error) {
	g := getter{theta: theta}
	p := TitreDependent{
		Mu:         g.get(Mu),
		MuShort:    g.get(MuShort),
		Tau:        g.get(Tau),
		Gradient:   g.get(Gradient),
		BoostLimit: g.get(BoostLimit),
		Wane:       g.get(Wane),
	}
	return p, g.err
}

// Saturation returns the titre-dependent scale factor for a boost raised
// on top of an existing titre. Above the limit the factor is constant.
func (p TitreDependent) Saturation(titre float64) float64 {
	if titre >= p.BoostLimit {
		return 1 - p.Gradient*p.BoostLimit
	}
	return 1 - p.Gradient*titre
}

// Pre-unpacked parameters of the fast individual simulator.
type Fast struct {
	Mu      float64
	MuShort float64
	Wane    float64
	Tau     float64
}

func NewFast(theta Theta) (Fast, error) {
	g := getter{theta: theta}
	p := Fast{
		Mu:      g.get(Mu),
		MuShort: g.get(MuShort),
		Wane:    g.get(Wane),
		Tau:     g.get(Tau),
	}
	return p, g.err
}
