package boost

import (
	"github.com/lucasmaystre/titrekick/params"
	"github.com/lucasmaystre/titrekick/utils"
)

var (
	titreDependent *TitreDependent
	_              Model = titreDependent
)

// TitreDependent suppresses each boost as a function of the titre already
// present when the infection happened, with a ceiling at BoostLimit.
//
// The titre present at each infection (the monitored titre) is rebuilt
// from all earlier infections in a forward pass over the slots, which is
// inherently sequential. The observable pass that follows only reads the
// monitored titres and is independent across slots and samples.
type TitreDependent struct {
	Params params.TitreDependent
}

func NewTitreDependent(theta params.Theta) (*TitreDependent, error) {
	p, err := params.NewTitreDependent(theta)
	if err != nil {
		return nil, err
	}
	return &TitreDependent{Params: p}, nil
}

var titreRequirements = requirements{times: true, monitored: true}

func (m *TitreDependent) Accumulate(out Buffers, in *Inputs) error {
	if err := in.validate(out, titreRequirements); err != nil {
		return err
	}
	if err := m.monitor(out.Monitored, in); err != nil {
		return err
	}
	return m.observe(out.Predicted, out.Monitored, in)
}

// Monitor runs the forward pass only, filling out.Monitored.
func (m *TitreDependent) Monitor(out Buffers, in *Inputs) error {
	if err := in.validate(out, titreRequirements); err != nil {
		return err
	}
	return m.monitor(out.Monitored, in)
}

// Observe runs the observable pass only, from monitored titres filled by
// a previous call to Monitor.
func (m *TitreDependent) Observe(out Buffers, in *Inputs) error {
	if err := in.validate(out, titreRequirements); err != nil {
		return err
	}
	return m.observe(out.Predicted, out.Monitored, in)
}

// Saturated long- and short-term boosts of strain s on strain row, raised
// by the n-th infection on top of the given titre.
func (m *TitreDependent) boosts(in *Inputs, row, s, n int, titre float64) (long, short float64) {
	p := &m.Params
	senior := utils.Seniority(p.Tau, float64(n))
	scale := p.Saturation(titre)
	long = utils.NonNegative(senior * (p.Mu * in.Map.Long.At(row, s)) * scale)
	short = utils.NonNegative(senior * (p.MuShort * in.Map.Short.At(row, s)) * scale)
	return
}

// Forward pass. The running total is shared by all slots of a call and is
// written to monitored[i] after every earlier slot it visits, active or
// not. Slots without an earlier slot keep the caller's value.
func (m *TitreDependent) monitor(monitored []float64, in *Inputs) error {
	var (
		h     = &in.History
		ts    = h.Times
		wane  = m.Params.Wane
		total = 0.0
	)
	for i, s := range h.Strains {
		if !h.Active[i] {
			continue
		}
		for ii := i - 1; ii >= 0; ii-- {
			if h.Active[ii] {
				long, short := m.boosts(in, s, h.Strains[ii], h.Cumulative[ii], monitored[ii])
				boost := long + short*utils.LinearWane(wane, ts[i]-ts[ii])
				if err := checkContribution(boost, ii, -1); err != nil {
					return err
				}
				total += boost
			}
			monitored[i] = total
		}
	}
	return nil
}

// Observable pass.
func (m *TitreDependent) observe(predicted, monitored []float64, in *Inputs) error {
	h := &in.History
	for i, s := range h.Strains {
		if !h.Active[i] {
			continue
		}
		for k, sk := range in.SampleStrains {
			long, short := m.boosts(in, sk, s, h.Cumulative[i], monitored[i])
			v := long + short*in.Waning[i]
			if err := checkContribution(v, i, k); err != nil {
				return err
			}
			predicted[k] += v
		}
	}
	return nil
}
