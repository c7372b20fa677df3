// Package fast simulates the titres of one individual across several blood
// draws in a single pass, with the base boosting model and parameters
// unpacked ahead of time.
//
// Unlike the boost package, seniority and waning are derived here from the
// infection and draw times: only infections at or before a draw count, and
// their seniority follows their position in the infection slice. The
// infections must therefore be sorted by time. Simulate does not check
// this; use Chronological or build the Individual with AddInfection.
package fast

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lucasmaystre/titrekick/antigenic"
	"github.com/lucasmaystre/titrekick/params"
	"github.com/lucasmaystre/titrekick/utils"
)

var (
	ErrConfig           = params.ErrConfig
	ErrNotChronological = errors.New("infection not in chronological order")
)

type Individual struct {
	InfectionTimes   []float64
	InfectionStrains []int
}

// AddInfection appends an infection. It panics if the infection happened
// before the last one added.
func (ind *Individual) AddInfection(time float64, strain int) {
	idx := len(ind.InfectionTimes)
	if idx > 0 && time < ind.InfectionTimes[idx-1] {
		panic(ErrNotChronological)
	}
	ind.InfectionTimes = append(ind.InfectionTimes, time)
	ind.InfectionStrains = append(ind.InfectionStrains, strain)
}

// Chronological reports whether infection times are non-decreasing.
func Chronological(times []float64) bool {
	return sort.Float64sAreSorted(times)
}

// Draws groups measurement rows by blood draw: draw j owns the next
// Rows[j] rows after those of draw j-1.
type Draws struct {
	Times []float64
	Rows  []int
}

func (d *Draws) Len() int {
	return len(d.Times)
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...)
}

// Simulate adds the titres of every draw to predicted, one entry per
// measurement row. rowStrains holds the measured strain of each row.
func Simulate(predicted []float64, p params.Fast, ind *Individual,
	rowStrains []int, draws *Draws, m *antigenic.Map) error {
	if draws == nil {
		return configErr("nil draws")
	}
	return SimulateRange(predicted, p, ind, rowStrains, draws, 0, draws.Len()-1, 0, m)
}

// SimulateRange is Simulate restricted to draws first..last (inclusive),
// whose rows start at startRow. An empty range (last < first) is a no-op.
func SimulateRange(predicted []float64, p params.Fast, ind *Individual,
	rowStrains []int, draws *Draws, first, last, startRow int, m *antigenic.Map) error {
	if err := validate(predicted, ind, rowStrains, draws, first, last, startRow, m); err != nil {
		return err
	}
	var (
		ts      = ind.InfectionTimes
		strains = ind.InfectionStrains
		long    = m.Long
		short   = m.Short
		row     = startRow
	)
	for j := first; j <= last; j++ {
		t := draws.Times[j]
		end := row + draws.Rows[j]
		nInf := 1.0
		// Sum all infections that happened by the time of the draw.
		for x, tx := range ts {
			if tx > t {
				continue
			}
			wane := utils.LinearWane(p.Wane, t-tx)
			senior := utils.Seniority(p.Tau, nInf)
			s := strains[x]
			for r := row; r < end; r++ {
				sr := rowStrains[r]
				predicted[r] += senior * (p.Mu*long.At(sr, s) + p.MuShort*short.At(sr, s)*wane)
			}
			nInf++
		}
		row = end
	}
	return nil
}

func validate(predicted []float64, ind *Individual, rowStrains []int,
	draws *Draws, first, last, startRow int, m *antigenic.Map) error {
	switch {
	case m == nil:
		return configErr("nil antigenic map")
	case ind == nil:
		return configErr("nil individual")
	case draws == nil:
		return configErr("nil draws")
	}
	if len(ind.InfectionTimes) != len(ind.InfectionStrains) {
		return configErr("%d infection times for %d infection strains",
			len(ind.InfectionTimes), len(ind.InfectionStrains))
	}
	for x, s := range ind.InfectionStrains {
		if !m.Contains(s) {
			return configErr("infection strain %d at infection %d outside %d strains", s, x, m.Strains())
		}
	}
	if len(draws.Rows) != len(draws.Times) {
		return configErr("%d draw row counts for %d draw times", len(draws.Rows), len(draws.Times))
	}
	if len(predicted) != len(rowStrains) {
		return configErr("%d predicted titres for %d rows", len(predicted), len(rowStrains))
	}
	if last < first {
		return nil
	}
	if first < 0 || last >= draws.Len() {
		return configErr("draw range %d..%d outside %d draws", first, last, draws.Len())
	}
	if startRow < 0 {
		return configErr("negative start row %d", startRow)
	}
	end := startRow
	for j := first; j <= last; j++ {
		if draws.Rows[j] < 0 {
			return configErr("negative row count %d for draw %d", draws.Rows[j], j)
		}
		end += draws.Rows[j]
	}
	if end > len(rowStrains) {
		return configErr("draws %d..%d need rows up to %d, have %d", first, last, end, len(rowStrains))
	}
	for r := startRow; r < end; r++ {
		if !m.Contains(rowStrains[r]) {
			return configErr("measured strain %d at row %d outside %d strains", rowStrains[r], r, m.Strains())
		}
	}
	return nil
}
