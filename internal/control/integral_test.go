package control

import (
	"math"

	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/homeosim/internal/cell"
	"github.com/san-kum/homeosim/internal/kinetics"
)

var _ = Describe("IntegralController", func() {
	var (
		mockCtrl *gomock.Controller
		reporter *MockReporter
		comp     *cell.Compartment
		channel  *cell.Conductance
		ic       *IntegralController
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		reporter = NewMockReporter(mockCtrl)

		comp = cell.NewCompartment("soma", 1)
		channel = cell.NewConductance("CaS", kinetics.NewCaS(), 0.1, 120, 0, 0)
		comp.AddConductance(channel)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newController := func(tauM, tauG, m float64) *IntegralController {
		c, err := NewIntegralController(tauM, tauG, m, WithReporter(reporter))
		Expect(err).ToNot(HaveOccurred())
		return c
	}

	Context("construction", func() {
		It("should reject a non-positive tau_g", func() {
			reporter.EXPECT().Report(gomock.Any()).Times(2)

			_, err := NewIntegralController(100, 0, 0, WithReporter(reporter))
			Expect(err).To(MatchError(ErrInvalidTauG))

			_, err = NewIntegralController(100, -5, 0, WithReporter(reporter))
			Expect(err).To(MatchError(ErrInvalidTauG))
		})

		It("should accept an infinite tau_m", func() {
			ic = newController(math.Inf(1), 1000, 0)
			Expect(ic.Type()).To(Equal(Unset))
		})
	})

	Context("when bound to a channel", func() {
		BeforeEach(func() {
			ic = newController(100, 1000, 0)
			Expect(ic.Connect(channel)).To(Succeed())
		})

		It("should register with the owning compartment", func() {
			Expect(ic.Type()).To(Equal(Channel))
			Expect(comp.Mechanisms()).To(ContainElement(ic))
		})

		It("should step the worked example", func() {
			comp.CaTarget = 10
			comp.CaPrev = 0
			Expect(ic.Init()).To(Succeed())

			Expect(ic.Integrate(1)).To(Succeed())

			Expect(ic.M).To(BeNumerically("~", 0.1, 1e-12))
			Expect(channel.Gbar).To(BeNumerically("~", 0.1, 1e-12))
			Expect(ic.State(1)).To(Equal(ic.M))
			Expect(ic.State(2)).To(Equal(channel.Gbar))
		})

		It("should read CaPrev rather than Ca", func() {
			comp.CaTarget = 10
			comp.CaPrev = 10
			comp.Ca = 500
			Expect(ic.Init()).To(Succeed())

			Expect(ic.Integrate(1)).To(Succeed())

			Expect(ic.M).To(Equal(0.0))
		})

		It("should keep m non-negative", func() {
			comp.CaTarget = 1
			comp.CaPrev = 50
			Expect(ic.Init()).To(Succeed())

			for i := 0; i < 100; i++ {
				Expect(ic.Integrate(1)).To(Succeed())
				Expect(ic.M).To(Equal(0.0))
				Expect(channel.Gbar).To(BeNumerically(">=", 0))
			}
		})

		It("should clamp gbar at zero", func() {
			comp.CaTarget = 0
			comp.CaPrev = 0
			Expect(ic.Init()).To(Succeed())

			fast := newController(100, 0.5, 0)
			other := cell.NewConductance("Kd", kinetics.NewKd(), 1, -80, 0, 0)
			comp.AddConductance(other)
			Expect(fast.Connect(other)).To(Succeed())
			Expect(fast.Init()).To(Succeed())

			Expect(fast.Integrate(1)).To(Succeed())
			Expect(other.Gbar).To(Equal(0.0))
		})

		It("should be inert with a NaN target", func() {
			comp.CaPrev = 0
			Expect(ic.Init()).To(Succeed())
			Expect(math.IsNaN(ic.Target)).To(BeTrue())

			Expect(ic.Integrate(1)).To(Succeed())

			Expect(ic.M).To(Equal(0.0))
			Expect(channel.Gbar).To(Equal(0.1))
		})

		It("should be inert with an infinite tau_m", func() {
			slow := newController(math.Inf(1), 1000, 0)
			other := cell.NewConductance("Kd", kinetics.NewKd(), 0, -80, 0, 0)
			comp.AddConductance(other)
			Expect(slow.Connect(other)).To(Succeed())
			comp.CaTarget = 10
			Expect(slow.Init()).To(Succeed())

			for i := 0; i < 10; i++ {
				Expect(slow.Integrate(1)).To(Succeed())
			}
			Expect(slow.M).To(Equal(0.0))
			Expect(other.Gbar).To(Equal(0.0))
		})

		It("should prefer a CalciumTarget mechanism over the legacy field", func() {
			comp.CaTarget = 3
			first, err := NewCalciumTarget(7)
			Expect(err).ToNot(HaveOccurred())
			second, err := NewCalciumTarget(9)
			Expect(err).ToNot(HaveOccurred())
			Expect(first.Connect(comp)).To(Succeed())
			Expect(second.Connect(comp)).To(Succeed())

			Expect(ic.Init()).To(Succeed())

			Expect(ic.Target).To(Equal(9.0))
		})

		It("should reject a second binding", func() {
			reporter.EXPECT().Report(gomock.Any()).Times(2)

			syn := cell.NewSynapse("glut", 10, 0)
			syn.Connect(comp)
			Expect(ic.Connect(syn)).To(MatchError(ErrAlreadyBound))
			Expect(ic.Connect(comp)).To(MatchError(ErrAlreadyBound))
			Expect(ic.Type()).To(Equal(Channel))
		})

		It("should serialize m and gbar", func() {
			ic.M = 0.25
			buf := []float64{-1, -1, -1, -1}

			next := ic.FullState(buf, 1)

			Expect(next).To(Equal(3))
			Expect(ic.FullStateSize()).To(Equal(2))
			Expect(buf).To(Equal([]float64{-1, 0.25, 0.1, -1}))
		})

		It("should return NaN for unknown state indices", func() {
			Expect(math.IsNaN(ic.State(0))).To(BeTrue())
			Expect(math.IsNaN(ic.State(3))).To(BeTrue())
		})
	})

	Context("when bound to a synapse", func() {
		var syn *cell.Synapse

		BeforeEach(func() {
			syn = cell.NewSynapse("glut", 100, 0)
			syn.Connect(comp)
			ic = newController(100, 1000, 0.1)
			Expect(ic.Connect(syn)).To(Succeed())
		})

		It("should hold gmax at its fixed point", func() {
			comp.CaTarget = 5
			comp.CaPrev = 5
			Expect(ic.Init()).To(Succeed())

			Expect(ic.Integrate(1)).To(Succeed())

			Expect(ic.Type()).To(Equal(Synapse))
			Expect(syn.Gmax).To(BeNumerically("~", 100, 1e-9))
			Expect(ic.State(2)).To(Equal(syn.Gmax))
		})

		It("should grow gmax when calcium is low", func() {
			comp.CaTarget = 10
			comp.CaPrev = 0
			Expect(ic.Init()).To(Succeed())

			Expect(ic.Integrate(1)).To(Succeed())

			// m = 0.2, gdot = (0.2 - 0.1) / 1000
			Expect(syn.Gmax).To(BeNumerically("~", 100.1, 1e-9))
		})
	})

	Context("misuse", func() {
		BeforeEach(func() {
			ic = newController(100, 1000, 0)
		})

		It("should reject a compartment binding", func() {
			reporter.EXPECT().Report(gomock.Any())

			Expect(ic.Connect(comp)).To(MatchError(cell.ErrCompartmentTarget))
			Expect(ic.Type()).To(Equal(Unset))
			Expect(comp.Mechanisms()).To(BeEmpty())
		})

		It("should reject a detached channel", func() {
			reporter.EXPECT().Report(gomock.Any())

			loose := cell.NewConductance("Kd", kinetics.NewKd(), 1, -80, 0, 0)
			Expect(ic.Connect(loose)).To(MatchError(cell.ErrNotAttached))
		})

		It("should reject a compartment without positive area", func() {
			reporter.EXPECT().Report(gomock.Any()).Times(2)

			flat := cell.NewCompartment("flat", 0)
			ch := cell.NewConductance("Kd", kinetics.NewKd(), 1, -80, 0, 0)
			flat.AddConductance(ch)
			Expect(ic.Connect(ch)).To(MatchError(ErrInvalidArea))
			Expect(ic.Type()).To(Equal(Unset))
			Expect(flat.Mechanisms()).To(BeEmpty())

			syn := cell.NewSynapse("in", 10, 0)
			syn.Connect(flat)
			Expect(ic.Connect(syn)).To(MatchError(ErrInvalidArea))
			Expect(ic.Type()).To(Equal(Unset))

			Expect(ic.Connect(channel)).To(Succeed())
			Expect(ic.Type()).To(Equal(Channel))
		})

		It("should fail to init or integrate while unbound", func() {
			reporter.EXPECT().Report(gomock.Any()).Times(2)

			Expect(ic.Init()).To(MatchError(ErrUnbound))
			Expect(ic.Integrate(1)).To(MatchError(ErrUnbound))
		})

		It("should report NaN strength while unbound", func() {
			buf := make([]float64, 2)
			Expect(ic.FullState(buf, 0)).To(Equal(2))
			Expect(math.IsNaN(buf[1])).To(BeTrue())
		})

		It("should only accept solver order 0", func() {
			reporter.EXPECT().Report(gomock.Any())

			Expect(ic.CheckSolvers(0)).To(Succeed())
			Expect(ic.CheckSolvers(4)).To(MatchError(ErrUnsupportedSolverOrder))
		})
	})

	Context("live tuning", func() {
		BeforeEach(func() {
			ic = newController(100, 1000, 0)
		})

		It("should expose its parameters", func() {
			Expect(ic.GetParams()).To(HaveKeyWithValue("tau_g", 1000.0))
			Expect(ic.SetParam("tau_m", 50)).To(Succeed())
			Expect(ic.TauM).To(Equal(50.0))
		})

		It("should refuse an invalid tau_g", func() {
			Expect(ic.SetParam("tau_g", 0)).To(MatchError(ErrInvalidTauG))
			Expect(ic.SetParam("gain", 1)).To(HaveOccurred())
		})
	})
})

var _ = Describe("CalciumTarget", func() {
	It("should publish its set-point as state 0", func() {
		ct, err := NewCalciumTarget(7.5)
		Expect(err).ToNot(HaveOccurred())
		Expect(ct.Name()).To(Equal(CalciumTargetName))
		Expect(ct.State(0)).To(Equal(7.5))
		Expect(math.IsNaN(ct.State(1))).To(BeTrue())
	})

	It("should accept NaN and reject negative targets", func() {
		_, err := NewCalciumTarget(math.NaN())
		Expect(err).ToNot(HaveOccurred())
		_, err = NewCalciumTarget(-1)
		Expect(err).To(MatchError(ErrInvalidTarget))
	})

	It("should only connect to compartments", func() {
		ct, _ := NewCalciumTarget(1)
		comp := cell.NewCompartment("soma", 1)
		ch := cell.NewConductance("Kd", kinetics.NewKd(), 1, -80, 0, 0)
		comp.AddConductance(ch)

		Expect(ct.Connect(ch)).To(MatchError(cell.ErrUnsupportedTarget))
		Expect(ct.Connect(comp)).To(Succeed())
		Expect(ct.Connect(comp)).To(Succeed())
		Expect(comp.Mechanisms()).To(HaveLen(1))
	})
})
