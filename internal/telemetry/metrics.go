package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds counters for the pipeline: queries, abstentions by
// reason code, handler invocations, and validator retries. admitly.New does
// not create one, so no pipeline stage records into it. All instruments are created against the global meter provider configured
// by Init; when OTEL is disabled (no endpoint), the provider is a no-op and
// these calls are inert.
type PipelineMetrics struct {
	queriesTotal      metric.Int64Counter
	abstentionsByKind metric.Int64Counter
	handlerInvocation metric.Int64Counter
	validatorRetries  metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instrument set. Errors are logged
// and degrade to no-op counters rather than failing pipeline construction —
// a missing meter must never prevent the service from answering queries.
func NewPipelineMetrics(logger *slog.Logger) *PipelineMetrics {
	m := Meter("admitly/pipeline")

	pm := &PipelineMetrics{}
	var err error

	pm.queriesTotal, err = m.Int64Counter("admitly.queries.total",
		metric.WithDescription("total queries handled by the pipeline"))
	if err != nil {
		logger.Warn("telemetry: create queries counter failed", "error", err)
	}

	pm.abstentionsByKind, err = m.Int64Counter("admitly.abstentions.total",
		metric.WithDescription("abstentions emitted, by reason code"))
	if err != nil {
		logger.Warn("telemetry: create abstentions counter failed", "error", err)
	}

	pm.handlerInvocation, err = m.Int64Counter("admitly.handler.invocations",
		metric.WithDescription("handler invocations, by handler id"))
	if err != nil {
		logger.Warn("telemetry: create handler counter failed", "error", err)
	}

	pm.validatorRetries, err = m.Int64Counter("admitly.validator.retries",
		metric.WithDescription("validator-triggered handler retries"))
	if err != nil {
		logger.Warn("telemetry: create retries counter failed", "error", err)
	}

	return pm
}

// RecordQuery increments the total-queries counter.
func (pm *PipelineMetrics) RecordQuery(ctx context.Context) {
	if pm == nil || pm.queriesTotal == nil {
		return
	}
	pm.queriesTotal.Add(ctx, 1)
}

// RecordAbstention increments the abstentions counter, tagged by reason code.
func (pm *PipelineMetrics) RecordAbstention(ctx context.Context, reason string) {
	if pm == nil || pm.abstentionsByKind == nil {
		return
	}
	pm.abstentionsByKind.Add(ctx, 1, metric.WithAttributes(stringAttr("reason", reason)))
}

// RecordHandlerInvocation increments the per-handler invocation counter.
func (pm *PipelineMetrics) RecordHandlerInvocation(ctx context.Context, handlerID string) {
	if pm == nil || pm.handlerInvocation == nil {
		return
	}
	pm.handlerInvocation.Add(ctx, 1, metric.WithAttributes(stringAttr("handler_id", handlerID)))
}

// RecordValidatorRetry increments the validator-retry counter.
func (pm *PipelineMetrics) RecordValidatorRetry(ctx context.Context, handlerID string) {
	if pm == nil || pm.validatorRetries == nil {
		return
	}
	pm.validatorRetries.Add(ctx, 1, metric.WithAttributes(stringAttr("handler_id", handlerID)))
}
