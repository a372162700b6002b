package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "ctchen222/Battleship"

// GameMetrics holds the instruments recorded by the session server.
// A nil *GameMetrics records nothing.
type GameMetrics struct {
	shots           metric.Int64Counter
	matchesStarted  metric.Int64Counter
	matchesFinished metric.Int64Counter
	rematches       metric.Int64Counter
	active          metric.Int64UpDownCounter
	rejected        metric.Int64Counter
}

// NewGameMetrics creates the instruments on meter. A nil meter uses the
// global meter provider.
func NewGameMetrics(meter metric.Meter) (*GameMetrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	var (
		m   GameMetrics
		err error
	)
	if m.shots, err = meter.Int64Counter("battleship.shots",
		metric.WithDescription("Resolved shots by outcome"),
		metric.WithUnit("{shot}")); err != nil {
		return nil, fmt.Errorf("failed to create shots counter: %w", err)
	}
	if m.matchesStarted, err = meter.Int64Counter("battleship.matches.started",
		metric.WithDescription("Games started, including rematches"),
		metric.WithUnit("{match}")); err != nil {
		return nil, fmt.Errorf("failed to create matches.started counter: %w", err)
	}
	if m.matchesFinished, err = meter.Int64Counter("battleship.matches.finished",
		metric.WithDescription("Games that ended with a sunk fleet"),
		metric.WithUnit("{match}")); err != nil {
		return nil, fmt.Errorf("failed to create matches.finished counter: %w", err)
	}
	if m.rematches, err = meter.Int64Counter("battleship.rematches",
		metric.WithDescription("Rematches agreed by both players"),
		metric.WithUnit("{match}")); err != nil {
		return nil, fmt.Errorf("failed to create rematches counter: %w", err)
	}
	if m.active, err = meter.Int64UpDownCounter("battleship.connections.active",
		metric.WithDescription("Seated player connections"),
		metric.WithUnit("{connection}")); err != nil {
		return nil, fmt.Errorf("failed to create connections.active counter: %w", err)
	}
	if m.rejected, err = meter.Int64Counter("battleship.connections.rejected",
		metric.WithDescription("Connections refused because the match was full"),
		metric.WithUnit("{connection}")); err != nil {
		return nil, fmt.Errorf("failed to create connections.rejected counter: %w", err)
	}
	return &m, nil
}

func (m *GameMetrics) ShotFired(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.shots.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *GameMetrics) MatchStarted(ctx context.Context, rematch bool) {
	if m == nil {
		return
	}
	m.matchesStarted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("rematch", rematch)))
	if rematch {
		m.rematches.Add(ctx, 1)
	}
}

func (m *GameMetrics) MatchFinished(ctx context.Context) {
	if m == nil {
		return
	}
	m.matchesFinished.Add(ctx, 1)
}

func (m *GameMetrics) ConnectionOpened(ctx context.Context, transport string) {
	if m == nil {
		return
	}
	m.active.Add(ctx, 1, metric.WithAttributes(attribute.String("transport", transport)))
}

func (m *GameMetrics) ConnectionClosed(ctx context.Context, transport string) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1, metric.WithAttributes(attribute.String("transport", transport)))
}

func (m *GameMetrics) ConnectionRejected(ctx context.Context, transport string) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("transport", transport)))
}
