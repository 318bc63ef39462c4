package effects_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/planefx/internal/effects"
	"github.com/san-kum/planefx/internal/render"
)

var _ = Describe("DeferredQueue", func() {
	var (
		q   *effects.DeferredQueue
		rec *render.Recorder
	)

	newHandle := func() effects.Handle {
		h, err := rec.CreateEffect("contrail", mgl64.Ident4(), 1)
		Expect(err).NotTo(HaveOccurred())
		return h
	}

	BeforeEach(func() {
		q = effects.NewDeferredQueue()
		rec = render.NewRecorder()
	})

	It("returns nothing before the scheduled tick", func() {
		q.Schedule(newHandle(), 10)
		Expect(q.PopDue(9)).To(BeEmpty())
		Expect(q.Len()).To(Equal(1))
	})

	It("pops every bucket at or before the tick, earliest first", func() {
		a, b, c := newHandle(), newHandle(), newHandle()
		q.Schedule(b, 20)
		q.Schedule(a, 10)
		q.Schedule(c, 30)

		Expect(q.PopDue(25)).To(Equal([]effects.Handle{a, b}))
		Expect(q.Len()).To(Equal(1))
		Expect(q.Buckets()).To(Equal(1))
	})

	It("keeps a handle in a single bucket when rescheduled", func() {
		h := newHandle()
		q.Schedule(h, 10)
		q.Schedule(h, 40)

		at, ok := q.ScheduledAt(h)
		Expect(ok).To(BeTrue())
		Expect(at).To(Equal(uint64(40)))
		Expect(q.Len()).To(Equal(1))
		Expect(q.Buckets()).To(Equal(1))
		Expect(q.PopDue(10)).To(BeEmpty())
	})

	It("drains everything regardless of schedule", func() {
		q.Schedule(newHandle(), 5)
		q.Schedule(newHandle(), 500)

		Expect(q.Drain()).To(HaveLen(2))
		Expect(q.Len()).To(BeZero())
		Expect(q.Buckets()).To(BeZero())
	})
})
