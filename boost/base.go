package boost

import (
	"github.com/lucasmaystre/titrekick/params"
)

var (
	base *Base
	_    Model = base // Check that Base respects the Model interface.
)

// Base boosts every sample by a constant magnitude, discounted by
// precomputed seniority and waning vectors. There is no temporal gating:
// the caller zeroes seniority or waning for infections after a sample.
type Base struct {
	Params params.Base
}

func NewBase(theta params.Theta) (*Base, error) {
	p, err := params.NewBase(theta)
	if err != nil {
		return nil, err
	}
	return &Base{Params: p}, nil
}

func (m *Base) Accumulate(out Buffers, in *Inputs) error {
	if err := in.validate(out, requirements{seniority: true}); err != nil {
		return err
	}
	var (
		mu        = m.Params.Mu
		muShort   = m.Params.MuShort
		h         = &in.History
		seniority = in.Seniority
		waning    = in.Waning
		predicted = out.Predicted
	)
	if !sound(mu) || !sound(muShort) {
		return numericErr("boost magnitudes %v, %v", mu, muShort)
	}
	err := checkSlots(h, func(i int) (float64, float64) { return seniority[i], waning[i] })
	if err != nil {
		return err
	}
	for k, sk := range in.SampleStrains {
		long, short := in.Map.Long.Row(sk), in.Map.Short.Row(sk)
		for i, s := range h.Strains {
			if !h.Active[i] {
				continue
			}
			predicted[k] += seniority[i] * (mu*long[s] + muShort*short[s]*waning[i])
		}
	}
	return checkTotals(predicted)
}
