// Package queue is a thin RabbitMQ publishing library used by the outbox
// relay. It owns connection and channel lifecycle, declares the exchange and
// queue topology, and publishes identified, persistent messages.
//
// Every message carries a caller-supplied message id and correlation id so
// downstream consumers can deduplicate redeliveries:
//
//	q := queue.NewRabbitMQQueue(cfg, queue.WithLogger(logger))
//	if err := q.Connect(); err != nil {
//		return err
//	}
//	defer q.Close()
//
//	err := q.Publish(ctx, "order-events", "order.placed", queue.Message{
//		ID:          recordID,
//		Subject:     "placed",
//		TypeTag:     "order.placed",
//		ContentType: "application/json",
//		Body:        payload,
//	})
//
// The library is publish-only on purpose; consuming belongs to the services
// on the other side of the broker.
package queue
