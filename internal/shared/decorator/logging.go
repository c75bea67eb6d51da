package decorator

import (
	"context"

	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
)

type commandLoggingDecorator[C any, R any] struct {
	base   CommandHandler[C, R]
	logger infrastructure.Logger
}

func (d commandLoggingDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	action := actionName(cmd)

	d.logger.Debug().Str("action", action).Msg("executing command")

	defer func() {
		if err != nil {
			d.logger.Error().Err(err).Str("action", action).Msg("command failed")

			return
		}

		d.logger.Debug().Str("action", action).Msg("command executed successfully")
	}()

	return d.base.Handle(ctx, cmd)
}

type queryLoggingDecorator[Q any, R any] struct {
	base   QueryHandler[Q, R]
	logger infrastructure.Logger
}

func (d queryLoggingDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	action := actionName(query)

	defer func() {
		if err != nil {
			d.logger.Error().Err(err).Str("action", action).Msg("query failed")
		}
	}()

	return d.base.Execute(ctx, query)
}
