package decorator

import (
	"context"
	"fmt"
)

type commandMetricsDecorator[C any, R any] struct {
	base   CommandHandler[C, R]
	client MetricsClient
}

func (d commandMetricsDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	action := actionName(cmd)

	defer func() {
		if err != nil {
			d.client.Inc(fmt.Sprintf("commands.%s.failure", action), 1)

			return
		}

		d.client.Inc(fmt.Sprintf("commands.%s.success", action), 1)
	}()

	return d.base.Handle(ctx, cmd)
}

type queryMetricsDecorator[Q any, R any] struct {
	base   QueryHandler[Q, R]
	client MetricsClient
}

func (d queryMetricsDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	action := actionName(query)

	defer func() {
		if err != nil {
			d.client.Inc(fmt.Sprintf("queries.%s.failure", action), 1)

			return
		}

		d.client.Inc(fmt.Sprintf("queries.%s.success", action), 1)
	}()

	return d.base.Execute(ctx, query)
}
