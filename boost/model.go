// Package boost predicts antibody titres from an individual's infection
// history.
//
// Every model adds its contribution to caller-owned buffers and never
// resets them, so several sources can be composed into one running total.
// Zero the buffers between independent totals.
package boost

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasmaystre/titrekick/antigenic"
	"github.com/lucasmaystre/titrekick/params"
)

var (
	// ErrConfig is returned, wrapped, for any caller contract violation.
	// Buffers are left untouched when it is returned.
	ErrConfig = params.ErrConfig
	// ErrNumeric flags a computed contribution that is NaN, infinite or
	// negative after flooring. Buffers may be partially updated.
	ErrNumeric = errors.New("numeric anomaly in titre contribution")
)

type Model interface {
	// Add the contribution of every active infection to out.
	Accumulate(out Buffers, in *Inputs) error
}

// History is one individual's infection history, one entry per slot.
type History struct {
	Cumulative []int     // Running infection count, including the slot.
	Active     []bool    // Inactive slots contribute nothing.
	Times      []float64 // Infection times. Only read by TitreDependent.
	Strains    []int     // Infecting strain, as a map index.
}

func (h *History) Slots() int {
	return len(h.Strains)
}

type Inputs struct {
	History       History
	SampleStrains []int     // Measured strain of each sample.
	Map           *antigenic.Map
	Waning        []float64 // Per-slot waning of the short-term boost.
	Seniority     []float64 // Per-slot seniority multiplier. Only read by Base.
}

// Buffers are the caller-owned accumulators.
type Buffers struct {
	Predicted []float64 // One entry per sample.
	Monitored []float64 // One entry per slot. Only used by TitreDependent.
}

type requirements struct {
	times     bool
	seniority bool
	monitored bool
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...)
}

func (in *Inputs) validate(out Buffers, req requirements) error {
	if in == nil {
		return configErr("nil inputs")
	}
	if in.Map == nil {
		return configErr("nil antigenic map")
	}
	h := &in.History
	n := h.Slots()
	if len(h.Cumulative) != n || len(h.Active) != n {
		return configErr("history lengths differ: %d strains, %d cumulative, %d active",
			n, len(h.Cumulative), len(h.Active))
	}
	if req.times && len(h.Times) != n {
		return configErr("history has %d times for %d slots", len(h.Times), n)
	}
	if len(in.Waning) != n {
		return configErr("%d waning values for %d slots", len(in.Waning), n)
	}
	if req.seniority && len(in.Seniority) != n {
		return configErr("%d seniority values for %d slots", len(in.Seniority), n)
	}
	if len(out.Predicted) != len(in.SampleStrains) {
		return configErr("%d predicted titres for %d samples", len(out.Predicted), len(in.SampleStrains))
	}
	if req.monitored && len(out.Monitored) != n {
		return configErr("%d monitored titres for %d slots", len(out.Monitored), n)
	}
	for i, s := range h.Strains {
		if !in.Map.Contains(s) {
			return configErr("infection strain %d at slot %d outside %d strains", s, i, in.Map.Strains())
		}
	}
	for k, s := range in.SampleStrains {
		if !in.Map.Contains(s) {
			return configErr("sample strain %d at sample %d outside %d strains", s, k, in.Map.Strains())
		}
	}
	return nil
}

// A multiplier that keeps every contribution it enters finite and
// non-negative, given a validated map.
func sound(v float64) bool {
	return v >= 0 && v <= math.MaxFloat64
}

func numericErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNumeric}, args...)...)
}

// checkSlots rejects the multipliers of active slots before anything is
// accumulated, so the inner loops need no per-contribution check.
func checkSlots(h *History, factors func(i int) (float64, float64)) error {
	for i := range h.Strains {
		if !h.Active[i] {
			continue
		}
		if a, b := factors(i); !sound(a) || !sound(b) {
			return numericErr("multipliers %v, %v at slot %d", a, b, i)
		}
	}
	return nil
}

// checkTotals catches overflow and infinite map weights.
func checkTotals(predicted []float64) error {
	for k, v := range predicted {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return numericErr("titre %v on sample %d", v, k)
		}
	}
	return nil
}

// A negative sample index stands for the monitored titre of a later slot.
func checkContribution(v float64, slot, sample int) error {
	if v >= 0 && !math.IsInf(v, 1) {
		return nil
	}
	if sample < 0 {
		return fmt.Errorf("%w: %v from slot %d on a monitored titre", ErrNumeric, v, slot)
	}
	return fmt.Errorf("%w: %v from slot %d on sample %d", ErrNumeric, v, slot, sample)
}
