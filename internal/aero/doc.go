// Package aero computes the per-tick aerodynamic state of one vehicle and
// turns it into effect directives.
//
// The package is organised around a handful of pieces:
//
//   - [Profile]: dominant plane normal and volume of a part, derived once per
//     shape and orientation and shared through a [ProfileCache]
//   - [Membership]: the vehicle's aerodynamic surfaces and propulsion emitters,
//     kept current from attach/detach notifications
//   - [Core]: the per-vehicle tick (airflow, density gate, transonic band,
//     per-surface lift, contrails, deferred cleanup)
//
// The formulas in flight.go are heuristics tuned for visuals. They are not a
// wind-tunnel model and lose accuracy at density extremes.
//
// # Example
//
//	core := aero.NewCore(vehicle, aero.Options{
//	    Atmosphere: registry,
//	    Profiles:   profiles,
//	    Capabilities: caps,
//	    Factory:    renderer,
//	    Tuning:     config.DefaultTuning(),
//	})
//	core.Attach(part)
//	report, err := core.Tick()
//
// # Thread Safety
//
// A Core is NOT thread-safe. It must be ticked from one goroutine; the shared
// atmosphere registry and profile cache are safe to share between cores.
package aero
