package scenario

import (
	"strings"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lucasmaystre/titrekick/boost"
	"github.com/lucasmaystre/titrekick/fast"
	"github.com/lucasmaystre/titrekick/params"
)

const single = `
strains: 2
map:
  long: [[1, 0], [0, 1]]
  short: [[0, 0], [0, 0]]
theta: {mu: 2, mu_short: 0, tau: 0, wane: 0}
model: base
individuals:
  - id: only
    infections:
      - {time: 0, strain: 0}
    draws:
      - {time: 1, strains: [0]}
`

func titres(res *Result) [][]float64 {
	var out [][]float64
	for _, ind := range res.Individuals {
		for _, d := range ind.Draws {
			out = append(out, d.Titres)
		}
	}
	return out
}

func withModel(sc *Scenario, model string) *Scenario {
	cp := *sc
	cp.Model = model
	return &cp
}

var _ = Describe("Parse", func() {
	It("decodes a minimal scenario", func() {
		sc, err := Parse([]byte(single))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Strains).To(Equal(2))
		Expect(sc.Model).To(Equal(ModelBase))
		Expect(sc.Individuals).To(HaveLen(1))
		Expect(sc.Individuals[0].Infections[0].active()).To(BeTrue())
	})

	DescribeTable("rejects invalid scenarios",
		func(from, to string) {
			_, err := Parse([]byte(strings.Replace(single, from, to, 1)))
			Expect(err).To(MatchError(ErrInvalid))
		},
		Entry("unknown model", "model: base", "model: quadratic"),
		Entry("strain dependent without groups", "model: base", "model: strain_dependent"),
		Entry("zero strains", "strains: 2", "strains: 0"),
		Entry("short map row", "long: [[1, 0], [0, 1]]", "long: [[1, 0], [0]]"),
		Entry("missing map row", "short: [[0, 0], [0, 0]]", "short: [[0, 0]]"),
		Entry("unknown field", "model: base", "model: base\nseed: 4"),
		Entry("individual without id", "id: only", "id: \"\""),
		Entry("monitored length mismatch", "id: only", "id: only\n    monitored: [1, 2]"),
	)

	It("rejects duplicate individuals", func() {
		dup := single + `  - id: only
    infections: []
    draws: []
`
		_, err := Parse([]byte(dup))
		Expect(err).To(MatchError(ErrInvalid))
	})

	It("rejects negative map weights", func() {
		sc, err := Parse([]byte(strings.Replace(single, "short: [[0, 0], [0, 0]]", "short: [[0, -1], [0, 0]]", 1)))
		Expect(err).NotTo(HaveOccurred())
		_, err = sc.AntigenicMap()
		Expect(err).To(MatchError(ErrInvalid))
	})
})

var _ = Describe("Load", func() {
	It("reads a scenario file", func() {
		sc, err := Load("testdata/cross.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Individuals).To(HaveLen(2))
		Expect(sc.Individuals[1].Infections[0].active()).To(BeFalse())
		Expect(sc.Groups.StrainToGroup).To(Equal([]int{0, 1}))
	})

	It("fails on a missing file", func() {
		_, err := Load("testdata/missing.yaml")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Variant", func() {
	var sc *Scenario

	BeforeEach(func() {
		var err error
		sc, err = Load("testdata/cross.yaml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("maps model names to boosting variants", func() {
		v, ok := sc.Variant()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(boost.BaseVariant{}))

		v, _ = withModel(sc, ModelTitreDependent).Variant()
		Expect(v).To(Equal(boost.TitreDependentVariant{}))

		v, _ = withModel(sc, ModelStrainDependent).Variant()
		Expect(v).To(Equal(boost.StrainDependentVariant{Groups: boost.GroupMapping{
			GroupBoost:    []float64{2, 4},
			StrainToGroup: []int{0, 1},
		}}))

		_, ok = withModel(sc, ModelFast).Variant()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Run", func() {
	log := logr.Discard()

	It("reproduces a single boost", func() {
		sc, err := Parse([]byte(single))
		Expect(err).NotTo(HaveOccurred())
		res, err := Run(sc, log)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Model).To(Equal(ModelBase))
		Expect(titres(res)).To(Equal([][]float64{{2}}))
	})

	Context("with cross-reactive strains", func() {
		var sc *Scenario

		BeforeEach(func() {
			var err error
			sc, err = Load("testdata/cross.yaml")
			Expect(err).NotTo(HaveOccurred())
		})

		It("gates infections after each draw", func() {
			res, err := Run(sc, log)
			Expect(err).NotTo(HaveOccurred())
			got := titres(res)
			Expect(got).To(HaveLen(3))
			Expect(got[0]).To(HaveLen(2))
			Expect(got[0][0]).To(BeNumerically("~", 1.1875, 1e-12))
			Expect(got[0][1]).To(BeNumerically("~", 2.75, 1e-12))
			Expect(got[1][0]).To(BeNumerically("~", 2.5625, 1e-12))
			Expect(got[2]).To(Equal([]float64{0}), "inactive infections never boost")
		})

		It("agrees with the fast simulator", func() {
			base, err := Run(sc, log)
			Expect(err).NotTo(HaveOccurred())
			quick, err := Run(withModel(sc, ModelFast), log)
			Expect(err).NotTo(HaveOccurred())

			want := titres(base)
			got := titres(quick)
			Expect(got).To(HaveLen(len(want)))
			for j := range want {
				for k := range want[j] {
					Expect(got[j][k]).To(BeNumerically("~", want[j][k], 1e-12))
				}
			}
		})

		It("uses group boosts for the strain dependent model", func() {
			res, err := Run(withModel(sc, ModelStrainDependent), log)
			Expect(err).NotTo(HaveOccurred())
			got := titres(res)
			// Strain 1 belongs to a group boosting by 4 instead of mu = 2.
			// Draw at 6, row strain 1: 4*1 + 0.5*(2*0.5 + 1*0.25*0.5).
			Expect(got[1][0]).To(BeNumerically("~", 4.5625, 1e-12))
		})

		It("reports monitored titres for the titre dependent model", func() {
			res, err := Run(withModel(sc, ModelTitreDependent), log)
			Expect(err).NotTo(HaveOccurred())
			first := res.Individuals[0]
			Expect(first.Draws[0].Monitored).To(Equal([]float64{0, 0}))
			// At the second draw the second infection sees the first,
			// short term waned over 3 time units: 2*0.5 + 1*0.25*0.25.
			Expect(first.Draws[1].Monitored[1]).To(BeNumerically("~", 1.0625, 1e-12))

			base, err := Run(sc, log)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Draws[1].Titres[0]).To(BeNumerically("<", base.Individuals[0].Draws[1].Titres[0]))
		})

		It("rejects unsorted infections on the fast path", func() {
			sc.Individuals[0].Infections[0].Time = 5
			_, err := Run(withModel(sc, ModelFast), log)
			Expect(err).To(MatchError(fast.ErrNotChronological))
		})

		It("builds the fast path from active infections only", func() {
			inactive := false
			first := &sc.Individuals[0]
			first.Infections = append(first.Infections, Infection{Time: 0, Strain: 0, Active: &inactive})
			res, err := Run(withModel(sc, ModelFast), log)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Individuals[0].Draws[1].Titres[0]).To(BeNumerically("~", 2.5625, 1e-12))
		})

		It("needs tau and wane to derive seniority and waning", func() {
			delete(sc.Theta, params.Wane)
			_, err := Run(sc, log)
			Expect(err).To(MatchError(params.ErrMissingParam))
			Expect(err.Error()).To(ContainSubstring(`"p1"`))
		})

		It("surfaces kernel configuration errors", func() {
			sc.Individuals[0].Draws[0].Strains = []int{0, 9}
			_, err := Run(sc, log)
			Expect(err).To(MatchError(params.ErrConfig))
		})
	})
})
