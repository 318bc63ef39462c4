package effects

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/planefx/internal/telemetry"
)

// Names selects the effect definition used for each kind.
type Names struct {
	Vapor     string
	Transonic string
	Contrail  string
}

// Config configures a Manager. StopDelay is the fade window, in ticks,
// between a soft stop and the hard stop of the same handle.
type Config struct {
	Names     Names
	StopDelay uint64
	Logger    zerolog.Logger
	Telemetry *telemetry.Instruments
}

type Manager struct {
	factory   Factory
	names     Names
	delay     uint64
	log       zerolog.Logger
	telemetry *telemetry.Instruments

	surfaces  map[Key]Handle
	contrails map[Key]Handle
	transonic Handle
	queue     *DeferredQueue

	// cleared is set by ClearAll and reset by any creation, so repeated
	// clears with nothing live cost nothing.
	cleared bool
}

func NewManager(factory Factory, cfg Config) *Manager {
	return &Manager{
		factory:   factory,
		names:     cfg.Names,
		delay:     cfg.StopDelay,
		log:       cfg.Logger,
		telemetry: cfg.Telemetry,
		surfaces:  make(map[Key]Handle),
		contrails: make(map[Key]Handle),
		queue:     NewDeferredQueue(),
		cleared:   true,
	}
}

// AssignOrUpdate applies one surface directive. A non-positive intensity
// hard-stops the surface's handle; a positive one creates it if needed and
// updates scale and velocity in place. A nil handle with nil error means no
// effect is wanted.
func (m *Manager) AssignOrUpdate(key Key, target RenderID, d Directive) (Handle, error) {
	h, ok := m.surfaces[key]
	if d.Intensity <= 0 {
		if ok {
			m.stop(h, KindSurface)
			delete(m.surfaces, key)
		}
		return nil, nil
	}

	if !ok {
		var err error
		h, err = m.create(KindSurface, m.names.Vapor, mgl64.Ident4(), target)
		if err != nil {
			return nil, err
		}
		m.surfaces[key] = h
	}

	h.SetVelocity(d.Velocity)
	h.SetScale(d.Scale)
	return h, nil
}

// EnsureTransonic creates the vehicle's transonic handle on first use and
// sets its scale.
func (m *Manager) EnsureTransonic(anchor mgl64.Mat4, target RenderID, scale float64) (Handle, error) {
	if m.transonic == nil {
		h, err := m.create(KindTransonic, m.names.Transonic, anchor, target)
		if err != nil {
			return nil, err
		}
		m.transonic = h
	}
	m.transonic.SetScale(scale)
	return m.transonic, nil
}

// StopTransonic hard-stops the transonic handle. There is no fade window for it.
func (m *Manager) StopTransonic() bool {
	if m.transonic == nil {
		return false
	}
	m.stop(m.transonic, KindTransonic)
	m.transonic = nil
	return true
}

// EnsureContrail creates a contrail for the emitter if it has none.
func (m *Manager) EnsureContrail(key Key, target RenderID) (Handle, error) {
	if h, ok := m.contrails[key]; ok {
		return h, nil
	}
	h, err := m.create(KindContrail, m.names.Contrail, mgl64.Ident4(), target)
	if err != nil {
		return nil, err
	}
	m.contrails[key] = h
	return h, nil
}

// SoftStopContrail stops emission now and schedules the hard stop for
// tick+StopDelay. The emitter's slot is freed immediately so a new contrail
// can start before the old one has faded.
func (m *Manager) SoftStopContrail(key Key, tick uint64) bool {
	h, ok := m.contrails[key]
	if !ok {
		return false
	}
	m.softStop(h, tick)
	delete(m.contrails, key)
	return true
}

// Release hard-stops whatever the part owns. Used when the part leaves the vehicle.
func (m *Manager) Release(key Key) int {
	n := 0
	if h, ok := m.surfaces[key]; ok {
		m.stop(h, KindSurface)
		delete(m.surfaces, key)
		n++
	}
	if h, ok := m.contrails[key]; ok {
		m.stop(h, KindContrail)
		delete(m.contrails, key)
		n++
	}
	return n
}

// ClearAll stops every live effect: contrails fade through the deferred
// queue, transonic and surface handles stop immediately. Returns the number
// of handles touched; zero once already cleared.
func (m *Manager) ClearAll(tick uint64) int {
	if m.cleared {
		return 0
	}
	n := 0
	for key, h := range m.contrails {
		m.softStop(h, tick)
		delete(m.contrails, key)
		n++
	}
	if m.StopTransonic() {
		n++
	}
	for key, h := range m.surfaces {
		m.stop(h, KindSurface)
		delete(m.surfaces, key)
		n++
	}
	m.cleared = true
	m.log.Debug().Uint64("tick", tick).Int("stopped", n).Msg("cleared effects")
	return n
}

// Flush hard-stops every queued handle that is due at tick.
func (m *Manager) Flush(tick uint64) int {
	due := m.queue.PopDue(tick)
	for _, h := range due {
		h.Stop()
		m.telemetry.EffectStopped(string(KindContrail), telemetry.ModeHard)
	}
	return len(due)
}

// Close hard-stops everything, queued handles included.
func (m *Manager) Close() int {
	n := 0
	for key, h := range m.contrails {
		m.stop(h, KindContrail)
		delete(m.contrails, key)
		n++
	}
	for key, h := range m.surfaces {
		m.stop(h, KindSurface)
		delete(m.surfaces, key)
		n++
	}
	if m.StopTransonic() {
		n++
	}
	for _, h := range m.queue.Drain() {
		h.Stop()
		m.telemetry.EffectStopped(string(KindContrail), telemetry.ModeHard)
		n++
	}
	m.cleared = true
	return n
}

func (m *Manager) Surface(key Key) (Handle, bool) {
	h, ok := m.surfaces[key]
	return h, ok
}

func (m *Manager) Contrail(key Key) (Handle, bool) {
	h, ok := m.contrails[key]
	return h, ok
}

func (m *Manager) Transonic() Handle { return m.transonic }

func (m *Manager) SurfaceCount() int  { return len(m.surfaces) }
func (m *Manager) ContrailCount() int { return len(m.contrails) }
func (m *Manager) Pending() int       { return m.queue.Len() }
func (m *Manager) Cleared() bool      { return m.cleared }

// Queue exposes the deferred stop queue for inspection.
func (m *Manager) Queue() *DeferredQueue { return m.queue }

// Live counts handles currently owned by a part or the vehicle.
func (m *Manager) Live() int {
	n := len(m.surfaces) + len(m.contrails)
	if m.transonic != nil {
		n++
	}
	return n
}

func (m *Manager) create(kind Kind, name string, anchor mgl64.Mat4, target RenderID) (Handle, error) {
	h, err := m.factory.CreateEffect(name, anchor, target)
	if err == nil && h == nil {
		err = errNoHandle
	}
	if err != nil {
		m.telemetry.CreateFailed(string(kind))
		m.log.Debug().Err(err).Str("effect", name).Str("kind", string(kind)).Msg("effect creation failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrCreateFailed, name, err)
	}
	m.cleared = false
	m.telemetry.EffectCreated(string(kind))
	return h, nil
}

func (m *Manager) stop(h Handle, kind Kind) {
	h.Stop()
	m.telemetry.EffectStopped(string(kind), telemetry.ModeHard)
}

func (m *Manager) softStop(h Handle, tick uint64) {
	h.StopEmitting()
	m.queue.Schedule(h, tick+m.delay)
	m.telemetry.EffectStopped(string(KindContrail), telemetry.ModeSoft)
}
