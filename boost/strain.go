package boost

import (
	"github.com/lucasmaystre/titrekick/params"
	"github.com/lucasmaystre/titrekick/utils"
)

var (
	strainDependent *StrainDependent
	_               Model = strainDependent
)

// GroupMapping assigns every strain to a boosting group with its own
// long-term boost magnitude.
type GroupMapping struct {
	GroupBoost    []float64 // Long-term boost of each group.
	StrainToGroup []int     // Group of each strain, indexed like the map.
}

func (g *GroupMapping) boost(strain int) (float64, bool) {
	if strain < 0 || strain >= len(g.StrainToGroup) {
		return 0.0, false
	}
	group := g.StrainToGroup[strain]
	if group < 0 || group >= len(g.GroupBoost) {
		return 0.0, false
	}
	return g.GroupBoost[group], true
}

// StrainDependent replaces mu with the boost of the infecting strain's
// group, and computes seniority from the cumulative infection count.
type StrainDependent struct {
	Params params.StrainDependent
	Groups GroupMapping
}

// NewStrainDependent fails if groups is nil.
func NewStrainDependent(theta params.Theta, groups *GroupMapping) (*StrainDependent, error) {
	if groups == nil {
		return nil, configErr("strain-dependent boosting without group mapping")
	}
	p, err := params.NewStrainDependent(theta)
	if err != nil {
		return nil, err
	}
	return &StrainDependent{Params: p, Groups: *groups}, nil
}

func (m *StrainDependent) Accumulate(out Buffers, in *Inputs) error {
	if err := in.validate(out, requirements{}); err != nil {
		return err
	}
	h := &in.History
	for i, s := range h.Strains {
		if _, ok := m.Groups.boost(s); !ok {
			return configErr("no boosting group for strain %d at slot %d", s, i)
		}
	}
	var (
		muShort   = m.Params.MuShort
		tau       = m.Params.Tau
		waning    = in.Waning
		predicted = out.Predicted
	)
	if !sound(muShort) {
		return numericErr("short-term boost %v", muShort)
	}
	err := checkSlots(h, func(i int) (float64, float64) {
		mu, _ := m.Groups.boost(h.Strains[i])
		return mu, waning[i]
	})
	if err != nil {
		return err
	}
	for k, sk := range in.SampleStrains {
		long, short := in.Map.Long.Row(sk), in.Map.Short.Row(sk)
		for i, s := range h.Strains {
			if !h.Active[i] {
				continue
			}
			mu, _ := m.Groups.boost(s)
			senior := utils.Seniority(tau, float64(h.Cumulative[i]))
			predicted[k] += senior * (mu*long[s] + muShort*short[s]*waning[i])
		}
	}
	return checkTotals(predicted)
}
