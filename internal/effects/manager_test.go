package effects_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/planefx/internal/effects"
	"github.com/san-kum/planefx/internal/render"
)

const stopDelay = 1800

var names = effects.Names{Vapor: "vapor", Transonic: "cone", Contrail: "trail"}

var _ = Describe("Manager", func() {
	var (
		rec *render.Recorder
		m   *effects.Manager
	)

	BeforeEach(func() {
		rec = render.NewRecorder()
		m = effects.NewManager(rec, effects.Config{
			Names:     names,
			StopDelay: stopDelay,
			Logger:    zerolog.Nop(),
		})
	})

	Describe("AssignOrUpdate", func() {
		It("does nothing for non-positive intensity without a handle", func() {
			h, err := m.AssignOrUpdate(1, 7, effects.Directive{Intensity: -0.2})
			Expect(err).NotTo(HaveOccurred())
			Expect(h).To(BeNil())
			Expect(rec.Stats().Created).To(BeZero())
		})

		It("creates once and updates in place", func() {
			d := effects.Directive{Intensity: 0.5, Scale: 1.5, Velocity: mgl64.Vec3{0, 0, 10}}
			h1, err := m.AssignOrUpdate(1, 7, d)
			Expect(err).NotTo(HaveOccurred())

			d.Scale = 3
			h2, err := m.AssignOrUpdate(1, 7, d)
			Expect(err).NotTo(HaveOccurred())

			Expect(h2).To(BeIdenticalTo(h1))
			Expect(rec.Stats().Created).To(Equal(1))

			e := h1.(*render.Effect)
			Expect(e.Name).To(Equal("vapor"))
			Expect(e.Target).To(Equal(effects.RenderID(7)))
			Expect(e.Scale).To(Equal(3.0))
			Expect(e.Velocity).To(Equal(mgl64.Vec3{0, 0, 10}))
		})

		It("hard-stops the handle once intensity drops", func() {
			h, _ := m.AssignOrUpdate(1, 7, effects.Directive{Intensity: 1, Scale: 1})
			_, err := m.AssignOrUpdate(1, 7, effects.Directive{Intensity: 0})
			Expect(err).NotTo(HaveOccurred())

			Expect(h.(*render.Effect).Stopped).To(BeTrue())
			_, ok := m.Surface(1)
			Expect(ok).To(BeFalse())
			Expect(m.Pending()).To(BeZero())
		})

		It("reports a transient failure and retries next call", func() {
			refuse := true
			rec.RefuseWhen(func(string) bool { return refuse })

			_, err := m.AssignOrUpdate(1, 7, effects.Directive{Intensity: 1})
			Expect(err).To(MatchError(effects.ErrCreateFailed))
			Expect(m.SurfaceCount()).To(BeZero())

			refuse = false
			h, err := m.AssignOrUpdate(1, 7, effects.Directive{Intensity: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(h).NotTo(BeNil())
		})

		It("treats a nil handle without error as a failure", func() {
			nilFactory := effects.FactoryFunc(func(string, mgl64.Mat4, effects.RenderID) (effects.Handle, error) {
				return nil, nil
			})
			m = effects.NewManager(nilFactory, effects.Config{Names: names, StopDelay: stopDelay})

			_, err := m.AssignOrUpdate(1, 7, effects.Directive{Intensity: 1})
			Expect(err).To(MatchError(effects.ErrCreateFailed))
		})
	})

	Describe("transonic handle", func() {
		It("is created lazily at the anchor and stopped without fade", func() {
			anchor := mgl64.Translate3D(1, 2, 3)
			h, err := m.EnsureTransonic(anchor, 4, 0.8)
			Expect(err).NotTo(HaveOccurred())

			again, _ := m.EnsureTransonic(anchor, 4, 0.9)
			Expect(again).To(BeIdenticalTo(h))

			e := h.(*render.Effect)
			Expect(e.Anchor).To(Equal(anchor))
			Expect(e.Scale).To(Equal(0.9))

			Expect(m.StopTransonic()).To(BeTrue())
			Expect(m.StopTransonic()).To(BeFalse())
			Expect(e.Stopped).To(BeTrue())
			Expect(m.Pending()).To(BeZero())
		})
	})

	Describe("contrails", func() {
		It("soft-stops and hard-stops exactly StopDelay ticks later", func() {
			h, err := m.EnsureContrail(3, 11)
			Expect(err).NotTo(HaveOccurred())
			e := h.(*render.Effect)

			const softTick = 100
			Expect(m.SoftStopContrail(3, softTick)).To(BeTrue())
			Expect(e.Emitting).To(BeFalse())
			Expect(e.Stopped).To(BeFalse())

			_, ok := m.Contrail(3)
			Expect(ok).To(BeFalse())

			for tick := uint64(softTick); tick < softTick+stopDelay; tick++ {
				Expect(m.Flush(tick)).To(BeZero(), "flushed early at tick %d", tick)
			}
			Expect(e.Stopped).To(BeFalse())

			Expect(m.Flush(softTick + stopDelay)).To(Equal(1))
			Expect(e.Stopped).To(BeTrue())
			Expect(m.Pending()).To(BeZero())
			Expect(m.Flush(softTick + stopDelay + 1)).To(BeZero())
		})

		It("frees the slot immediately for a fresh contrail", func() {
			first, _ := m.EnsureContrail(3, 11)
			m.SoftStopContrail(3, 10)

			second, err := m.EnsureContrail(3, 11)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(BeIdenticalTo(first))
			Expect(m.Pending()).To(Equal(1))
		})
	})

	Describe("Release", func() {
		It("hard-stops everything the part owns", func() {
			s, _ := m.AssignOrUpdate(5, 1, effects.Directive{Intensity: 1})
			c, _ := m.EnsureContrail(5, 1)

			Expect(m.Release(5)).To(Equal(2))
			Expect(s.(*render.Effect).Stopped).To(BeTrue())
			Expect(c.(*render.Effect).Stopped).To(BeTrue())
			Expect(m.Live()).To(BeZero())
			Expect(m.Release(5)).To(BeZero())
		})
	})

	Describe("ClearAll", func() {
		It("fades contrails, hard-stops the rest, and is a no-op when repeated", func() {
			s, _ := m.AssignOrUpdate(1, 1, effects.Directive{Intensity: 1})
			c, _ := m.EnsureContrail(2, 1)
			cone, _ := m.EnsureTransonic(mgl64.Ident4(), 1, 1)

			Expect(m.ClearAll(50)).To(Equal(3))
			Expect(s.(*render.Effect).Stopped).To(BeTrue())
			Expect(cone.(*render.Effect).Stopped).To(BeTrue())
			Expect(c.(*render.Effect).Stopped).To(BeFalse())
			Expect(c.(*render.Effect).Emitting).To(BeFalse())

			at, ok := m.Queue().ScheduledAt(c)
			Expect(ok).To(BeTrue())
			Expect(at).To(Equal(uint64(50 + stopDelay)))
			Expect(m.Cleared()).To(BeTrue())

			before := rec.Stats()
			Expect(m.ClearAll(51)).To(BeZero())
			Expect(rec.Stats()).To(Equal(before))
		})

		It("arms again after a new effect is created", func() {
			m.ClearAll(1)
			m.EnsureContrail(2, 1)
			Expect(m.Cleared()).To(BeFalse())
			Expect(m.ClearAll(2)).To(Equal(1))
		})
	})

	Describe("Close", func() {
		It("hard-stops live and queued handles", func() {
			m.EnsureContrail(1, 1)
			m.SoftStopContrail(1, 0)
			m.EnsureContrail(2, 1)
			m.AssignOrUpdate(3, 1, effects.Directive{Intensity: 1})

			Expect(m.Close()).To(Equal(3))
			Expect(rec.Active()).To(BeEmpty())
			Expect(m.Pending()).To(BeZero())
			Expect(rec.Stats().DoubleStops).To(BeZero())
		})
	})
})
