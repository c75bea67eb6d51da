package infrastructure

import (
	"github.com/rs/zerolog"

	"github.com/architeacher/svc-order-outbox/internal/config"
	"github.com/architeacher/svc-order-outbox/pkg/queue"
)

// Queue re-exports the broker library's interface so adapters depend on the
// infrastructure layer only.
type Queue = queue.Queue

func NewQueue(cfg config.BrokerConfig, logger Logger) *queue.RabbitMQQueue {
	return queue.NewRabbitMQQueue(queue.Config{
		Scheme:   "amqp",
		Username: cfg.Username,
		Password: cfg.Password,
		Host:     cfg.Host,
		Port:     cfg.Port,
		Vhost:    cfg.VirtualHost,
	},
		queue.WithLogger(queueLogger{logger: logger}),
		queue.WithHeartbeat(cfg.Heartbeat),
		queue.WithConnectionTimeout(cfg.ConnectTimeout),
	)
}

// queueLogger bridges the broker library's minimal logging interface onto
// zerolog.
type (
	queueLogger struct {
		logger Logger
	}

	queueLogEvent struct {
		event *zerolog.Event
	}
)

func (l queueLogger) Info() queue.LogEvent  { return queueLogEvent{event: l.logger.Logger.Info()} }
func (l queueLogger) Error() queue.LogEvent { return queueLogEvent{event: l.logger.Logger.Error()} }
func (l queueLogger) Debug() queue.LogEvent { return queueLogEvent{event: l.logger.Logger.Debug()} }

func (e queueLogEvent) Msg(msg string) { e.event.Msg(msg) }

func (e queueLogEvent) Err(err error) queue.LogEvent {
	return queueLogEvent{event: e.event.Err(err)}
}

func (e queueLogEvent) Str(key, value string) queue.LogEvent {
	return queueLogEvent{event: e.event.Str(key, value)}
}
