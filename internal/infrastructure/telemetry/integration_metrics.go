package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are constructed without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// IntegrationMetrics tracks the seller integration's business activity:
// sync runs, promotion lifecycle, and outbound messaging.
type IntegrationMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	syncRunsTotal        *Counter
	ordersProcessedTotal *Counter
	promotionsTotal      *Counter
	messagesTotal        *Counter
	tokenRefreshTotal    *Counter

	upstreamDuration *Histogram
}

// IntegrationMetricsConfig holds configuration for integration metrics.
type IntegrationMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewIntegrationMetrics creates a new IntegrationMetrics instance.
func NewIntegrationMetrics(cfg IntegrationMetricsConfig) (*IntegrationMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	im := &IntegrationMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	im.syncRunsTotal, err = NewCounter(
		cfg.Meter,
		"melihub_sync_runs_total",
		"Total number of order sync runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	im.ordersProcessedTotal, err = NewCounter(
		cfg.Meter,
		"melihub_orders_processed_total",
		"Total number of marketplace orders processed by sync runs",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	im.promotionsTotal, err = NewCounter(
		cfg.Meter,
		"melihub_promotions_total",
		"Total number of promotion creation attempts",
		"{promotions}",
	)
	if err != nil {
		return nil, err
	}

	im.messagesTotal, err = NewCounter(
		cfg.Meter,
		"melihub_messages_total",
		"Total number of post-sale messages attempted",
		"{messages}",
	)
	if err != nil {
		return nil, err
	}

	im.tokenRefreshTotal, err = NewCounter(
		cfg.Meter,
		"melihub_token_refresh_total",
		"Total number of access token refreshes",
		"{refreshes}",
	)
	if err != nil {
		return nil, err
	}

	im.upstreamDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "melihub_upstream_request_duration_seconds",
		Description: "Duration of MercadoLibre API calls",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return im, nil
}

// All recorders are safe on a nil receiver so callers can hold an
// optional *IntegrationMetrics without guarding every call.

// RecordSyncRun records one completed sync run with its order count.
func (im *IntegrationMetrics) RecordSyncRun(ctx context.Context, outcome string, ordersProcessed int) {
	if im == nil {
		return
	}
	im.syncRunsTotal.Inc(ctx, AttrOutcome.String(outcome))
	if ordersProcessed > 0 {
		im.ordersProcessedTotal.Add(ctx, int64(ordersProcessed))
	}
}

// RecordPromotion records one promotion creation attempt.
func (im *IntegrationMetrics) RecordPromotion(ctx context.Context, outcome string) {
	if im == nil {
		return
	}
	im.promotionsTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordMessage records one post-sale message attempt.
func (im *IntegrationMetrics) RecordMessage(ctx context.Context, outcome string) {
	if im == nil {
		return
	}
	im.messagesTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordTokenRefresh records one token refresh attempt.
func (im *IntegrationMetrics) RecordTokenRefresh(ctx context.Context, outcome string) {
	if im == nil {
		return
	}
	im.tokenRefreshTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordUpstreamCall records the duration of one MercadoLibre API call.
func (im *IntegrationMetrics) RecordUpstreamCall(ctx context.Context, operation string, d time.Duration) {
	if im == nil {
		return
	}
	im.upstreamDuration.RecordDuration(ctx, d, AttrMeliOperation.String(operation))
}

// Outcome attribute values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
