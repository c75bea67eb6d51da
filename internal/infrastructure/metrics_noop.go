package infrastructure

import (
	"context"
	"net/http"
	"time"
)

// NoOpMetrics keeps call sites unconditional when telemetry is disabled.
type NoOpMetrics struct{}

func (m *NoOpMetrics) RecordEnqueue(_ context.Context, _ string, _ int) {}

func (m *NoOpMetrics) RecordPublish(_ context.Context, _ string, _ bool, _ time.Duration) {}

func (m *NoOpMetrics) RecordQuarantine(_ context.Context, _, _ string) {}

func (m *NoOpMetrics) RecordCycle(_ context.Context, _ int, _ time.Duration, _ bool) {}

func (m *NoOpMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (m *NoOpMetrics) Shutdown(_ context.Context) error {
	return nil
}
