package boost

import (
	"github.com/lucasmaystre/titrekick/params"
)

// Variant selects one of the boosting models. The set of variants is
// closed: BaseVariant, StrainDependentVariant and TitreDependentVariant.
type Variant interface {
	Name() string
	variant()
}

type BaseVariant struct{}

type StrainDependentVariant struct {
	Groups GroupMapping
}

type TitreDependentVariant struct{}

func (BaseVariant) Name() string            { return "base" }
func (StrainDependentVariant) Name() string { return "strain_dependent" }
func (TitreDependentVariant) Name() string  { return "titre_dependent" }

func (BaseVariant) variant()            {}
func (StrainDependentVariant) variant() {}
func (TitreDependentVariant) variant()  {}

// Select maps the driver's flags to a variant. Titre-dependent boosting
// wins over a group mapping; a nil mapping means none was given, while a
// non-nil empty one still selects strain-dependent boosting.
func Select(titreDependent bool, groups *GroupMapping) Variant {
	if titreDependent {
		return TitreDependentVariant{}
	}
	if groups != nil {
		return StrainDependentVariant{Groups: *groups}
	}
	return BaseVariant{}
}

// New builds the model for a variant, resolving its parameters from theta.
func New(v Variant, theta params.Theta) (Model, error) {
	var (
		m   Model
		err error
	)
	switch v := v.(type) {
	case TitreDependentVariant:
		m, err = NewTitreDependent(theta)
	case StrainDependentVariant:
		m, err = NewStrainDependent(theta, &v.Groups)
	case BaseVariant:
		m, err = NewBase(theta)
	default:
		return nil, configErr("unknown boosting variant %T", v)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Dispatch runs exactly one model. The date of birth is accepted for
// compatibility with existing drivers and is not used by any model.
func Dispatch(v Variant, theta params.Theta, out Buffers, in *Inputs, dob int) error {
	_ = dob
	m, err := New(v, theta)
	if err != nil {
		return err
	}
	return m.Accumulate(out, in)
}
