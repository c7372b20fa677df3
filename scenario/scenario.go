// Package scenario reads simulation scenarios and runs them through the
// boosting models one individual at a time.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/lucasmaystre/titrekick/antigenic"
	"github.com/lucasmaystre/titrekick/boost"
	"github.com/lucasmaystre/titrekick/params"
)

const (
	ModelBase            = "base"
	ModelStrainDependent = "strain_dependent"
	ModelTitreDependent  = "titre_dependent"
	ModelFast            = "fast"
)

var ErrInvalid = errors.New("invalid scenario")

// Scenario is a complete simulation input.
type Scenario struct {
	// Strains is the number of strains in the antigenic map.
	Strains int `yaml:"strains"`

	// Map holds the long- and short-term cross-reactivity, one row per
	// measured strain.
	Map MapSpec `yaml:"map"`

	// Theta holds the model parameters. tau and wane are also used to derive
	// seniority and waning for the dispatcher models.
	Theta map[string]float64 `yaml:"theta"`

	// Model is one of base, strain_dependent, titre_dependent or fast.
	Model string `yaml:"model"`

	// Groups is required by the strain_dependent model.
	Groups *GroupSpec `yaml:"groups,omitempty"`

	Individuals []Individual `yaml:"individuals"`
}

type MapSpec struct {
	Long  [][]float64 `yaml:"long"`
	Short [][]float64 `yaml:"short"`
}

type GroupSpec struct {
	Boost         []float64 `yaml:"boost"`
	StrainToGroup []int     `yaml:"strain_to_group"`
}

type Individual struct {
	ID  string `yaml:"id"`
	DOB int    `yaml:"dob,omitempty"`

	// Infections in slot order. The fast model needs them sorted by time.
	Infections []Infection `yaml:"infections"`

	Draws []Draw `yaml:"draws"`

	// Monitored optionally seeds the monitored titres of the
	// titre_dependent model, one per infection.
	Monitored []float64 `yaml:"monitored,omitempty"`
}

type Infection struct {
	Time   float64 `yaml:"time"`
	Strain int     `yaml:"strain"`
	// Active defaults to true.
	Active *bool `yaml:"active,omitempty"`
}

func (inf Infection) active() bool {
	return inf.Active == nil || *inf.Active
}

// Draw is one blood sample, measured against several strains.
type Draw struct {
	Time    float64 `yaml:"time"`
	Strains []int   `yaml:"strains"`
}

// Load reads and validates a YAML scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Validate checks the scenario's shape. Index ranges and parameter
// presence are left to the kernels, which report them as configuration
// errors.
func (sc *Scenario) Validate() error {
	if sc.Strains <= 0 {
		return invalid("strains must be > 0, got %d", sc.Strains)
	}
	for name, rows := range map[string][][]float64{"long": sc.Map.Long, "short": sc.Map.Short} {
		if len(rows) != sc.Strains {
			return invalid("%s map has %d rows for %d strains", name, len(rows), sc.Strains)
		}
		for i, row := range rows {
			if len(row) != sc.Strains {
				return invalid("%s map row %d has %d columns for %d strains", name, i, len(row), sc.Strains)
			}
		}
	}
	switch sc.Model {
	case ModelBase, ModelTitreDependent, ModelFast:
	case ModelStrainDependent:
		if sc.Groups == nil {
			return invalid("model %s needs groups", sc.Model)
		}
	default:
		return invalid("unknown model %q", sc.Model)
	}
	if len(sc.Individuals) == 0 {
		return invalid("no individuals")
	}
	seen := make(map[string]bool, len(sc.Individuals))
	for _, ind := range sc.Individuals {
		if ind.ID == "" {
			return invalid("individual without id")
		}
		if seen[ind.ID] {
			return invalid("duplicate individual %q", ind.ID)
		}
		seen[ind.ID] = true
		if ind.Monitored != nil && len(ind.Monitored) != len(ind.Infections) {
			return invalid("individual %q has %d monitored titres for %d infections",
				ind.ID, len(ind.Monitored), len(ind.Infections))
		}
	}
	return nil
}

// AntigenicMap builds the kernel map from the scenario's rows.
func (sc *Scenario) AntigenicMap() (*antigenic.Map, error) {
	long := mat.NewDense(sc.Strains, sc.Strains, nil)
	short := mat.NewDense(sc.Strains, sc.Strains, nil)
	for i := 0; i < sc.Strains; i++ {
		long.SetRow(i, sc.Map.Long[i])
		short.SetRow(i, sc.Map.Short[i])
	}
	m, err := antigenic.FromDense(long, short)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return m, nil
}

// Variant maps the model name to a boosting variant. The fast model has
// none.
func (sc *Scenario) Variant() (boost.Variant, bool) {
	var groups *boost.GroupMapping
	switch sc.Model {
	case ModelFast:
		return nil, false
	case ModelStrainDependent:
		groups = &boost.GroupMapping{
			GroupBoost:    sc.Groups.Boost,
			StrainToGroup: sc.Groups.StrainToGroup,
		}
	}
	return boost.Select(sc.Model == ModelTitreDependent, groups), true
}

func (sc *Scenario) theta() params.Theta {
	return params.Theta(sc.Theta)
}
