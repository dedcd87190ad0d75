package icoco_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cosim/internal/icoco"
)

var _ = Describe("Guard", func() {
	var (
		impl  *full
		guard *icoco.Guard
	)

	BeforeEach(func() {
		impl = newFull()
		guard = icoco.Wrap(impl)
	})

	Describe("before initialize", func() {
		It("starts uninitialized", func() {
			Expect(guard.State()).To(Equal(icoco.Uninitialized))
		})

		DescribeTable("rejects mandatory operations with WrongContext",
			func(call func(g *icoco.Guard) error) {
				err := call(guard)
				Expect(err).To(MatchError(icoco.ErrWrongContext))
				Expect(err).To(MatchError(ContainSubstring("before initialize")))
				Expect(impl.calls).To(BeEmpty())
			},
			Entry("terminate", func(g *icoco.Guard) error { return g.Terminate() }),
			Entry("presentTime", func(g *icoco.Guard) error { _, err := g.PresentTime(); return err }),
			Entry("computeTimeStep", func(g *icoco.Guard) error { _, _, err := g.ComputeTimeStep(); return err }),
			Entry("initTimeStep", func(g *icoco.Guard) error { _, err := g.InitTimeStep(0.1); return err }),
			Entry("solveTimeStep", func(g *icoco.Guard) error { _, err := g.SolveTimeStep(); return err }),
			Entry("validateTimeStep", func(g *icoco.Guard) error { return g.ValidateTimeStep() }),
			Entry("setStationaryMode", func(g *icoco.Guard) error { return g.SetStationaryMode(true) }),
			Entry("getStationaryMode", func(g *icoco.Guard) error { _, err := g.GetStationaryMode(); return err }),
			Entry("abortTimeStep", func(g *icoco.Guard) error { return g.AbortTimeStep() }),
			Entry("resetTime", func(g *icoco.Guard) error { return g.ResetTime(1) }),
			Entry("save", func(g *icoco.Guard) error { return g.Save(1, "memory") }),
			Entry("forget", func(g *icoco.Guard) error { return g.Forget(1, "memory") }),
			Entry("getOutputValuesNames", func(g *icoco.Guard) error { _, err := g.GetOutputValuesNames(); return err }),
		)

		It("does not enter READY when initialize reports a recoverable failure", func() {
			impl.initOK = false
			ok, err := guard.Initialize()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(guard.State()).To(Equal(icoco.Uninitialized))

			impl.initOK = true
			ok, err = guard.Initialize()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(guard.State()).To(Equal(icoco.Ready))
		})
	})

	Describe("after initialize", func() {
		BeforeEach(func() {
			ok, err := guard.Initialize()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("starts at time zero in READY", func() {
			Expect(guard.State()).To(Equal(icoco.Ready))
			Expect(guard.PresentTime()).To(Equal(0.0))
		})

		It("rejects a second initialize", func() {
			_, err := guard.Initialize()
			Expect(err).To(MatchError(icoco.ErrWrongContext))
			Expect(impl.calls).To(Equal([]string{"initialize"}))
		})

		It("advances time by dt on validate", func() {
			dt, stop, err := guard.ComputeTimeStep()
			Expect(err).NotTo(HaveOccurred())
			Expect(stop).To(BeFalse())

			Expect(guard.InitTimeStep(dt)).To(BeTrue())
			Expect(guard.State()).To(Equal(icoco.StepDefined))
			Expect(guard.PendingDt()).To(Equal(dt))
			Expect(guard.SolveTimeStep()).To(BeTrue())
			Expect(guard.ValidateTimeStep()).To(Succeed())

			Expect(guard.State()).To(Equal(icoco.Ready))
			Expect(guard.PresentTime()).To(Equal(dt))
		})

		It("leaves time unchanged on abort", func() {
			Expect(guard.InitTimeStep(0.25)).To(BeTrue())
			Expect(guard.SolveTimeStep()).To(BeTrue())
			Expect(guard.AbortTimeStep()).To(Succeed())

			Expect(guard.State()).To(Equal(icoco.Ready))
			Expect(guard.PresentTime()).To(Equal(0.0))
		})

		It("accumulates several validated steps", func() {
			for _, dt := range []float64{0.5, 0.25, 0.25} {
				Expect(guard.InitTimeStep(dt)).To(BeTrue())
				Expect(guard.SolveTimeStep()).To(BeTrue())
				Expect(guard.ValidateTimeStep()).To(Succeed())
			}
			Expect(guard.PresentTime()).To(Equal(1.0))
		})

		It("rejects a negative dt with WrongArgument and keeps READY", func() {
			_, err := guard.InitTimeStep(-1.0)
			Expect(err).To(MatchError(icoco.ErrWrongArgument))
			Expect(err).To(MatchError(ContainSubstring("argument 'dt'")))
			Expect(guard.State()).To(Equal(icoco.Ready))
		})

		It("accepts a zero dt", func() {
			Expect(guard.InitTimeStep(0)).To(BeTrue())
			Expect(guard.State()).To(Equal(icoco.StepDefined))
		})

		It("enters the step even when the code refuses dt", func() {
			impl.stepOK = false
			ok, err := guard.InitTimeStep(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(guard.State()).To(Equal(icoco.StepDefined))

			Expect(guard.AbortTimeStep()).To(Succeed())
			impl.stepOK = true
			Expect(guard.InitTimeStep(1)).To(BeTrue())
		})

		It("keeps solve failures as plain results", func() {
			impl.solveOK = false
			Expect(guard.InitTimeStep(0.1)).To(BeTrue())
			ok, err := guard.SolveTimeStep()
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(guard.State()).To(Equal(icoco.StepDefined))
		})

		It("propagates errors from the code unchanged", func() {
			impl.failErr = errSolverCrashed
			Expect(guard.InitTimeStep(0.1)).To(BeTrue())
			_, err := guard.SolveTimeStep()
			Expect(err).To(BeIdenticalTo(errSolverCrashed))
		})

		It("resets time exactly", func() {
			Expect(guard.ResetTime(5.0)).To(Succeed())
			Expect(guard.PresentTime()).To(Equal(5.0))
		})

		It("keeps the tracked time when the code fails to reset", func() {
			impl.resetErr = errSolverCrashed
			Expect(guard.ResetTime(5.0)).To(MatchError(errSolverCrashed))
			Expect(guard.PresentTime()).To(Equal(0.0))
		})

		It("remembers the stationary mode", func() {
			Expect(guard.GetStationaryMode()).To(BeFalse())
			Expect(guard.SetStationaryMode(true)).To(Succeed())
			Expect(guard.GetStationaryMode()).To(BeTrue())
			Expect(guard.IsStationary()).To(BeTrue())
		})

		It("forgets the stationary mode across a terminate/initialize cycle", func() {
			Expect(guard.SetStationaryMode(true)).To(Succeed())
			Expect(guard.Terminate()).To(Succeed())
			Expect(guard.Initialize()).To(BeTrue())
			Expect(guard.GetStationaryMode()).To(BeFalse())
		})

		It("terminates and then rejects presentTime", func() {
			Expect(guard.Terminate()).To(Succeed())
			Expect(guard.State()).To(Equal(icoco.Uninitialized))
			_, err := guard.PresentTime()
			Expect(err).To(MatchError(icoco.ErrWrongContext))

			err = guard.Terminate()
			Expect(err).To(MatchError(icoco.ErrWrongContext))
		})

		It("saves and restores between steps", func() {
			Expect(guard.Save(1, "memory")).To(Succeed())
			Expect(guard.Forget(1, "memory")).To(Succeed())
			err := guard.Restore(1, "memory")
			Expect(err).To(MatchError(icoco.ErrWrongArgument))
		})

		It("takes the present time from the restored state", func() {
			Expect(guard.Save(2, "memory")).To(Succeed())
			Expect(guard.InitTimeStep(0.5)).To(BeTrue())
			Expect(guard.SolveTimeStep()).To(BeTrue())
			Expect(guard.ValidateTimeStep()).To(Succeed())
			Expect(guard.PresentTime()).To(Equal(0.5))

			Expect(guard.Restore(2, "memory")).To(Succeed())
			Expect(guard.PresentTime()).To(Equal(0.0))
		})

		It("keeps the stationary mode across a restore", func() {
			Expect(guard.SetStationaryMode(true)).To(Succeed())
			Expect(guard.Save(3, "memory")).To(Succeed())
			Expect(guard.SetStationaryMode(false)).To(Succeed())

			Expect(guard.Restore(3, "memory")).To(Succeed())
			Expect(guard.GetStationaryMode()).To(BeFalse())
			Expect(impl.calls).NotTo(ContainElement("getStationaryMode"))
		})

		It("reports a present time the code cannot give after a restore", func() {
			Expect(guard.Save(4, "memory")).To(Succeed())
			impl.timeErr = errSolverCrashed

			err := guard.Restore(4, "memory")
			Expect(err).To(MatchError(errSolverCrashed))
			Expect(err).To(MatchError(ContainSubstring("present time after restore")))
		})

		It("delegates value I/O", func() {
			Expect(guard.GetOutputValuesNames()).To(ConsistOf("temperature"))
			Expect(guard.GetOutputDoubleValue("temperature")).To(Equal(300.0))
			_, err := guard.GetOutputDoubleValue("pressure")
			Expect(icoco.IsWrongArgument(err)).To(BeTrue())
		})

		It("passes NotImplemented through for optional operations", func() {
			_, err := guard.GetInputFieldsNames()
			Expect(err).To(MatchError(icoco.ErrNotImplemented))
			Expect(err).To(MatchError(ContainSubstring("getInputFieldsNames")))
		})
	})

	Describe("inside a time step", func() {
		BeforeEach(func() {
			Expect(guard.Initialize()).To(BeTrue())
			Expect(guard.InitTimeStep(0.1)).To(BeTrue())
		})

		DescribeTable("rejects READY-only operations with WrongContext",
			func(call func(g *icoco.Guard) error) {
				before := len(impl.calls)
				err := call(guard)
				Expect(err).To(MatchError(icoco.ErrWrongContext))
				Expect(err).To(MatchError(ContainSubstring("inside the TIME_STEP_DEFINED context")))
				Expect(impl.calls).To(HaveLen(before))
				Expect(guard.State()).To(Equal(icoco.StepDefined))
			},
			Entry("terminate", func(g *icoco.Guard) error { return g.Terminate() }),
			Entry("computeTimeStep", func(g *icoco.Guard) error { _, _, err := g.ComputeTimeStep(); return err }),
			Entry("initTimeStep", func(g *icoco.Guard) error { _, err := g.InitTimeStep(0.1); return err }),
			Entry("setStationaryMode", func(g *icoco.Guard) error { return g.SetStationaryMode(true) }),
			Entry("getStationaryMode", func(g *icoco.Guard) error { _, err := g.GetStationaryMode(); return err }),
			Entry("isStationary", func(g *icoco.Guard) error { _, err := g.IsStationary(); return err }),
			Entry("resetTime", func(g *icoco.Guard) error { return g.ResetTime(3) }),
			Entry("save", func(g *icoco.Guard) error { return g.Save(1, "memory") }),
			Entry("restore", func(g *icoco.Guard) error { return g.Restore(1, "memory") }),
		)

		It("still answers presentTime with the step start", func() {
			Expect(guard.PresentTime()).To(Equal(0.0))
		})

		It("allows forget and value I/O", func() {
			Expect(guard.Forget(7, "memory")).To(Succeed())
			Expect(guard.GetOutputDoubleValue("temperature")).To(Equal(300.0))
		})

		It("rejects a second solve in the same step", func() {
			Expect(guard.SolveTimeStep()).To(BeTrue())
			_, err := guard.SolveTimeStep()
			Expect(err).To(MatchError(icoco.ErrWrongContext))

			_, _, err = guard.IterateTimeStep()
			Expect(err).To(MatchError(icoco.ErrWrongContext))
		})

		It("allows repeated iterations before solving", func() {
			for i := 0; i < 3; i++ {
				ok, converged, err := guard.IterateTimeStep()
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(converged).To(BeTrue())
			}
			Expect(guard.SolveTimeStep()).To(BeTrue())
		})

		It("re-arms solve for the next step", func() {
			Expect(guard.SolveTimeStep()).To(BeTrue())
			Expect(guard.ValidateTimeStep()).To(Succeed())
			Expect(guard.InitTimeStep(0.1)).To(BeTrue())
			Expect(guard.SolveTimeStep()).To(BeTrue())
		})

		It("rejects a negative dt with WrongArgument before the context check", func() {
			_, err := guard.InitTimeStep(-1.0)
			Expect(err).To(MatchError(icoco.ErrWrongArgument))
			Expect(guard.PendingDt()).To(Equal(0.1))
		})
	})

	Describe("outside a time step", func() {
		BeforeEach(func() {
			Expect(guard.Initialize()).To(BeTrue())
		})

		DescribeTable("rejects STEP_DEFINED-only operations with WrongContext",
			func(call func(g *icoco.Guard) error) {
				err := call(guard)
				Expect(err).To(MatchError(icoco.ErrWrongContext))
				Expect(err).To(MatchError(ContainSubstring("outside the TIME_STEP_DEFINED context")))
				Expect(guard.State()).To(Equal(icoco.Ready))
			},
			Entry("solveTimeStep", func(g *icoco.Guard) error { _, err := g.SolveTimeStep(); return err }),
			Entry("validateTimeStep", func(g *icoco.Guard) error { return g.ValidateTimeStep() }),
			Entry("abortTimeStep", func(g *icoco.Guard) error { return g.AbortTimeStep() }),
			Entry("iterateTimeStep", func(g *icoco.Guard) error { _, _, err := g.IterateTimeStep(); return err }),
			Entry("pendingDt", func(g *icoco.Guard) error { _, err := g.PendingDt(); return err }),
		)
	})

	Describe("negative dt in any state", func() {
		It("is a WrongArgument even before initialize", func() {
			_, err := guard.InitTimeStep(-1.0)
			Expect(err).To(MatchError(icoco.ErrWrongArgument))
		})
	})

	Describe("setup calls", func() {
		var dataFile string

		BeforeEach(func() {
			dataFile = filepath.Join(GinkgoT().TempDir(), "case.yaml")
			Expect(os.WriteFile(dataFile, []byte("dt: 0.1\n"), 0o644)).To(Succeed())
		})

		It("rejects a missing data file", func() {
			err := guard.SetDataFile(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
			Expect(err).To(MatchError(icoco.ErrWrongArgument))
		})

		It("passes NotImplemented from codes without data files", func() {
			err := guard.SetDataFile(dataFile)
			Expect(err).To(MatchError(icoco.ErrNotImplemented))
		})

		It("rejects setDataFile and setMPIComm after initialize", func() {
			Expect(guard.Initialize()).To(BeTrue())
			Expect(guard.SetDataFile(dataFile)).To(MatchError(ContainSubstring("called after initialize()")))
			Expect(guard.SetComm(icoco.SingleProcess)).To(MatchError(icoco.ErrWrongContext))
		})
	})

	Describe("observers", func() {
		It("see every call with the resulting state", func() {
			var calls []icoco.Call
			guard = icoco.Wrap(impl, icoco.WithObserver(icoco.ObserverFunc(func(c icoco.Call) {
				calls = append(calls, c)
			})))

			_, _ = guard.PresentTime()
			Expect(guard.Initialize()).To(BeTrue())
			Expect(guard.InitTimeStep(0.5)).To(BeTrue())
			Expect(guard.SolveTimeStep()).To(BeTrue())
			Expect(guard.ValidateTimeStep()).To(Succeed())

			Expect(calls).To(HaveLen(5))
			Expect(calls[0].Method).To(Equal("presentTime"))
			Expect(calls[0].Err).To(HaveOccurred())
			Expect(calls[2].State).To(Equal(icoco.StepDefined))
			Expect(calls[4].State).To(Equal(icoco.Ready))
			Expect(calls[4].Time).To(Equal(0.5))
			Expect(calls[4].Problem).To(Equal("minimal"))
		})
	})
})
