package scenario

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/lucasmaystre/titrekick/antigenic"
	"github.com/lucasmaystre/titrekick/boost"
	"github.com/lucasmaystre/titrekick/fast"
	"github.com/lucasmaystre/titrekick/params"
	"github.com/lucasmaystre/titrekick/utils"
)

type Result struct {
	Model       string
	Individuals []IndividualResult
}

type IndividualResult struct {
	ID    string
	Draws []DrawResult
}

type DrawResult struct {
	Time    float64
	Strains []int
	Titres  []float64
	// Monitored titres at each infection, titre_dependent model only.
	Monitored []float64
}

// Run simulates every individual in turn. Each individual and draw gets
// fresh buffers.
func Run(sc *Scenario, log logr.Logger) (*Result, error) {
	m, err := sc.AntigenicMap()
	if err != nil {
		return nil, err
	}
	res := &Result{
		Model:       sc.Model,
		Individuals: make([]IndividualResult, 0, len(sc.Individuals)),
	}
	variant, dispatched := sc.Variant()
	for _, ind := range sc.Individuals {
		var draws []DrawResult
		if dispatched {
			draws, err = runDispatched(sc, variant, &ind, m)
		} else {
			draws, err = runFast(sc, &ind, m)
		}
		if err != nil {
			log.Error(err, "Simulation failed", "individual", ind.ID, "model", sc.Model)
			return nil, fmt.Errorf("individual %q: %w", ind.ID, err)
		}
		log.V(1).Info("Simulated individual",
			"individual", ind.ID,
			"infections", len(ind.Infections),
			"draws", len(draws))
		res.Individuals = append(res.Individuals, IndividualResult{ID: ind.ID, Draws: draws})
	}
	log.Info("Scenario complete", "model", sc.Model, "individuals", len(res.Individuals))
	return res, nil
}

// runDispatched evaluates each draw separately. Infections after the draw
// are masked out, and seniority and waning are derived for the draw time
// from tau and wane.
func runDispatched(sc *Scenario, variant boost.Variant, ind *Individual, m *antigenic.Map) ([]DrawResult, error) {
	theta := sc.theta()
	tau, err := theta.Get(params.Tau)
	if err != nil {
		return nil, err
	}
	wane, err := theta.Get(params.Wane)
	if err != nil {
		return nil, err
	}
	n := len(ind.Infections)
	in := &boost.Inputs{
		History: boost.History{
			Cumulative: make([]int, n),
			Active:     make([]bool, n),
			Times:      make([]float64, n),
			Strains:    make([]int, n),
		},
		Map:       m,
		Waning:    make([]float64, n),
		Seniority: make([]float64, n),
	}
	for i, inf := range ind.Infections {
		in.History.Times[i] = inf.Time
		in.History.Strains[i] = inf.Strain
	}

	out := make([]DrawResult, 0, len(ind.Draws))
	for _, d := range ind.Draws {
		count := 0
		for i, inf := range ind.Infections {
			gated := inf.active() && inf.Time <= d.Time
			in.History.Active[i] = gated
			in.Seniority[i] = 0
			in.Waning[i] = 0
			if gated {
				count++
				in.Seniority[i] = utils.Seniority(tau, float64(count))
				in.Waning[i] = utils.LinearWane(wane, d.Time-inf.Time)
			}
			in.History.Cumulative[i] = count
		}
		in.SampleStrains = d.Strains

		buf := boost.Buffers{
			Predicted: make([]float64, len(d.Strains)),
			Monitored: make([]float64, n),
		}
		copy(buf.Monitored, ind.Monitored)
		if err := boost.Dispatch(variant, theta, buf, in, ind.DOB); err != nil {
			return nil, fmt.Errorf("draw at %v: %w", d.Time, err)
		}
		dr := DrawResult{Time: d.Time, Strains: d.Strains, Titres: buf.Predicted}
		if _, ok := variant.(boost.TitreDependentVariant); ok {
			dr.Monitored = buf.Monitored
		}
		out = append(out, dr)
	}
	return out, nil
}

// runFast simulates all draws in one pass. Inactive infections are
// dropped and the rest must be in chronological order.
func runFast(sc *Scenario, ind *Individual, m *antigenic.Map) ([]DrawResult, error) {
	p, err := params.NewFast(sc.theta())
	if err != nil {
		return nil, err
	}
	var (
		active []Infection
		times  []float64
	)
	for _, inf := range ind.Infections {
		if inf.active() {
			active = append(active, inf)
			times = append(times, inf.Time)
		}
	}
	if !fast.Chronological(times) {
		return nil, fast.ErrNotChronological
	}
	var infected fast.Individual
	for _, inf := range active {
		infected.AddInfection(inf.Time, inf.Strain)
	}

	draws := &fast.Draws{
		Times: make([]float64, len(ind.Draws)),
		Rows:  make([]int, len(ind.Draws)),
	}
	var rowStrains []int
	for j, d := range ind.Draws {
		draws.Times[j] = d.Time
		draws.Rows[j] = len(d.Strains)
		rowStrains = append(rowStrains, d.Strains...)
	}
	predicted := make([]float64, len(rowStrains))
	if err := fast.Simulate(predicted, p, &infected, rowStrains, draws, m); err != nil {
		return nil, err
	}

	out := make([]DrawResult, 0, len(ind.Draws))
	row := 0
	for _, d := range ind.Draws {
		end := row + len(d.Strains)
		out = append(out, DrawResult{Time: d.Time, Strains: d.Strains, Titres: predicted[row:end:end]})
		row = end
	}
	return out, nil
}
