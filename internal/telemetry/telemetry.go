package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"SpaceArmada/internal/game"
)

const instrumentationName = "SpaceArmada/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Recorder reports simulation counters through OpenTelemetry. Without an SDK
// installed on the global provider every instrument is a no-op.
type Recorder struct {
	ctx       context.Context
	battle    attribute.KeyValue
	ticks     metric.Int64Counter
	tickTime  metric.Float64Histogram
	triggers  metric.Int64Counter
	destroyed metric.Int64Counter
	hits      metric.Int64Counter
}

var _ game.Metrics = (*Recorder)(nil)

// NewRecorder creates the instruments for one battle.
func NewRecorder(battleID string) (*Recorder, error) {
	return newRecorder(meter(), battleID)
}

func newRecorder(m metric.Meter, battleID string) (*Recorder, error) {
	r := &Recorder{ctx: context.Background(), battle: attribute.String("battle", battleID)}
	var err error

	if r.ticks, err = m.Int64Counter("battle.ticks",
		metric.WithDescription("Simulation ticks completed")); err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}
	if r.tickTime, err = m.Float64Histogram("battle.tick.duration",
		metric.WithDescription("Wall time of one simulation tick"),
		metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("creating tick histogram: %w", err)
	}
	if r.triggers, err = m.Int64Counter("battle.triggers.fired",
		metric.WithDescription("Mission event triggers fired")); err != nil {
		return nil, fmt.Errorf("creating trigger counter: %w", err)
	}
	if r.destroyed, err = m.Int64Counter("battle.spacecraft.destroyed",
		metric.WithDescription("Spacecraft destroyed")); err != nil {
		return nil, fmt.Errorf("creating destroyed counter: %w", err)
	}
	if r.hits, err = m.Int64Counter("battle.projectiles.hit",
		metric.WithDescription("Projectiles that hit a spacecraft")); err != nil {
		return nil, fmt.Errorf("creating hit counter: %w", err)
	}
	return r, nil
}

func (r *Recorder) TickCompleted(d time.Duration) {
	attrs := metric.WithAttributes(r.battle)
	r.ticks.Add(r.ctx, 1, attrs)
	r.tickTime.Record(r.ctx, float64(d)/float64(time.Millisecond), attrs)
}

func (r *Recorder) TriggerFired(event string) {
	r.triggers.Add(r.ctx, 1, metric.WithAttributes(r.battle, attribute.String("event", event)))
}

func (r *Recorder) SpacecraftDestroyed(class string) {
	r.destroyed.Add(r.ctx, 1, metric.WithAttributes(r.battle, attribute.String("class", class)))
}

func (r *Recorder) ProjectileHit() {
	r.hits.Add(r.ctx, 1, metric.WithAttributes(r.battle))
}
