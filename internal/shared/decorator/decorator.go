// Package decorator wraps command and query handlers with the cross-cutting
// concerns every use case needs: logging, metrics and tracing.
package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"go.opentelemetry.io/otel/trace"
)

type (
	// CommandHandler mutates state and returns a result.
	CommandHandler[C any, R any] interface {
		Handle(ctx context.Context, cmd C) (R, error)
	}

	// QueryHandler reads state without mutating it.
	QueryHandler[Q any, R any] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}

	// MetricsClient counts handler executions, keyed by action name and
	// outcome.
	MetricsClient interface {
		Inc(key string, value int)
	}
)

func ApplyCommandDecorators[C any, R any](
	handler CommandHandler[C, R],
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient MetricsClient,
) CommandHandler[C, R] {
	return commandLoggingDecorator[C, R]{
		base: commandMetricsDecorator[C, R]{
			base: commandTracingDecorator[C, R]{
				base:   handler,
				tracer: tracerProvider.Tracer("usecases"),
			},
			client: metricsClient,
		},
		logger: logger,
	}
}

func ApplyQueryDecorators[Q any, R any](
	handler QueryHandler[Q, R],
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient MetricsClient,
) QueryHandler[Q, R] {
	return queryLoggingDecorator[Q, R]{
		base: queryMetricsDecorator[Q, R]{
			base: queryTracingDecorator[Q, R]{
				base:   handler,
				tracer: tracerProvider.Tracer("usecases"),
			},
			client: metricsClient,
		},
		logger: logger,
	}
}

// actionName derives a stable identifier from the command/query type name,
// e.g. "place_order_command".
func actionName(v any) string {
	name := fmt.Sprintf("%T", v)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}

	return toSnake(name)
}

func toSnake(name string) string {
	var b strings.Builder

	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	return b.String()
}
