package boost

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/lucasmaystre/titrekick/antigenic"
	"github.com/lucasmaystre/titrekick/params"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func assertTitres(t *testing.T, want, got []float64) {
	t.Helper()
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("titres mismatch (-want +got):\n%s", diff)
	}
}

// Two strains with symmetric cross-reactivity.
func crossMap(t *testing.T) *antigenic.Map {
	t.Helper()
	m, err := antigenic.New(2,
		[]float64{1, 0.5, 0.5, 1},
		[]float64{1, 0.25, 0.25, 1})
	require.NoError(t, err)
	return m
}

// Two active infections, strain 0 then strain 1, measured against both.
func twoInfections(t *testing.T) *Inputs {
	return &Inputs{
		History: History{
			Cumulative: []int{1, 2},
			Active:     []bool{true, true},
			Times:      []float64{0, 4},
			Strains:    []int{0, 1},
		},
		SampleStrains: []int{0, 1},
		Map:           crossMap(t),
		Waning:        []float64{0.5, 1},
		Seniority:     []float64{1, 0.8},
	}
}

func titreTheta() params.Theta {
	return params.Theta{
		params.Mu:         2,
		params.MuShort:    1,
		params.Tau:        0,
		params.Gradient:   0.1,
		params.BoostLimit: 3,
		params.Wane:       0.05,
	}
}
