// Package telemetry exposes OpenTelemetry counters for effect lifecycle and
// tick failures. Without an SDK provider installed the global meter is a no-op.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/san-kum/planefx/internal/telemetry"

const (
	ModeHard = "hard"
	ModeSoft = "soft"
)

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Instruments is safe to use as a nil pointer; every method is then a no-op.
type Instruments struct {
	created        metric.Int64Counter
	stopped        metric.Int64Counter
	createFailures metric.Int64Counter
	tickFailures   metric.Int64Counter
}

// Default builds instruments on the global meter provider.
func Default() *Instruments {
	inst, err := New(meter())
	if err != nil {
		return nil
	}
	return inst
}

func New(m metric.Meter) (*Instruments, error) {
	var (
		i   Instruments
		err error
	)

	i.created, err = m.Int64Counter(
		"planefx.effects.created",
		metric.WithDescription("Effect handles created"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create created counter: %w", err)
	}

	i.stopped, err = m.Int64Counter(
		"planefx.effects.stopped",
		metric.WithDescription("Effect handles stopped, by mode"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stopped counter: %w", err)
	}

	i.createFailures, err = m.Int64Counter(
		"planefx.effects.create_failures",
		metric.WithDescription("Effect creations refused by the render subsystem"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}

	i.tickFailures, err = m.Int64Counter(
		"planefx.tick.failures",
		metric.WithDescription("Vehicle ticks abandoned after an unexpected failure"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tick failure counter: %w", err)
	}

	return &i, nil
}

func (i *Instruments) EffectCreated(kind string) {
	if i == nil {
		return
	}
	i.created.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (i *Instruments) EffectStopped(kind, mode string) {
	if i == nil {
		return
	}
	i.stopped.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("mode", mode),
	))
}

func (i *Instruments) CreateFailed(kind string) {
	if i == nil {
		return
	}
	i.createFailures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (i *Instruments) TickFailed(vehicle string) {
	if i == nil {
		return
	}
	i.tickFailures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("vehicle", vehicle)))
}
