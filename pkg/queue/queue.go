package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue represents the main queue interface for publishing identified messages
type Queue interface {
	// Publisher operations
	Publish(ctx context.Context, exchange, routingKey string, msg Message) error
	PublishWithOptions(ctx context.Context, exchange, routingKey string, msg Message, opts ...publisherOption) error

	// Infrastructure operations
	DeclareExchange(name, kind string, durable, autoDelete bool) error
	DeclareQueue(name string, durable, autoDelete bool) (amqp.Queue, error)
	BindQueue(queueName, routingKey, exchangeName string) error

	// Connection management
	Connect() error
	Close() error
	IsConnected() bool
}

// RabbitMQQueue implements the Queue interface using RabbitMQ
type RabbitMQQueue struct {
	config  Config
	conn    *amqp.Connection
	channel *ChannelWrapper
	logger  Logger
	mutex   sync.RWMutex
	dial    amqp.Config
	closed  bool
}

// NewRabbitMQQueue creates a new RabbitMQ queue implementation
func NewRabbitMQQueue(config Config, opts ...connectionOption) *RabbitMQQueue {
	options := &connectionOptions{}

	for _, opt := range opts {
		opt(options)
	}

	dial := amqp.Config{}
	if options.heartbeat != nil {
		dial.Heartbeat = *options.heartbeat
	}
	if options.connectTimeout != nil {
		timeout := *options.connectTimeout
		dial.Dial = amqp.DefaultDial(timeout)
	}

	queue := &RabbitMQQueue{
		config: config,
		logger: options.logger,
		dial:   dial,
	}

	return queue
}

// Connect establishes a connection to RabbitMQ
func (q *RabbitMQQueue) Connect() error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.conn != nil && !q.conn.IsClosed() {
		return nil // Already connected
	}

	var err error
	q.conn, err = amqp.DialConfig(getURL(q.config), q.dial)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	amqpCh, err := q.conn.Channel()
	if err != nil {
		q.conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	q.channel = &ChannelWrapper{
		amqpChan: amqpCh,
		logger:   q.logger,
		mutex:    &sync.Mutex{},
	}

	if q.logger != nil {
		q.logger.Info().Msg("Successfully connected to RabbitMQ")
	}

	return nil
}

// Close closes the connection to RabbitMQ
func (q *RabbitMQQueue) Close() error {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closed = true

	if q.channel != nil {
		q.channel.Close()
	}

	if q.conn != nil && !q.conn.IsClosed() {
		return q.conn.Close()
	}

	return nil
}

// IsConnected returns true if connected to RabbitMQ
func (q *RabbitMQQueue) IsConnected() bool {
	q.mutex.RLock()
	defer q.mutex.RUnlock()

	return q.conn != nil && !q.conn.IsClosed()
}

// DeclareExchange declares an exchange
func (q *RabbitMQQueue) DeclareExchange(name, kind string, durable, autoDelete bool) error {
	if !q.IsConnected() {
		return fmt.Errorf("not connected to RabbitMQ")
	}

	return q.channel.ExchangeDeclare(name, kind, durable, autoDelete, false, false, nil)
}

// DeclareQueue declares a queue
func (q *RabbitMQQueue) DeclareQueue(name string, durable, autoDelete bool) (amqp.Queue, error) {
	if !q.IsConnected() {
		return amqp.Queue{}, fmt.Errorf("not connected to RabbitMQ")
	}

	return q.channel.QueueDeclare(name, durable, autoDelete, false, false, nil)
}

// BindQueue binds a queue to an exchange with a routing key
func (q *RabbitMQQueue) BindQueue(queueName, routingKey, exchangeName string) error {
	if !q.IsConnected() {
		return fmt.Errorf("not connected to RabbitMQ")
	}

	return q.channel.QueueBind(queueName, routingKey, exchangeName, false, nil)
}

// Publish publishes a message to an exchange with default options
func (q *RabbitMQQueue) Publish(ctx context.Context, exchange, routingKey string, msg Message) error {
	return q.PublishWithOptions(ctx, exchange, routingKey, msg)
}

// PublishWithOptions publishes a message to an exchange with custom options
func (q *RabbitMQQueue) PublishWithOptions(ctx context.Context, exchange, routingKey string, msg Message, opts ...publisherOption) error {
	if !q.IsConnected() {
		return fmt.Errorf("not connected to RabbitMQ")
	}

	options := defaultPublisherOptions()
	for _, opt := range opts {
		opt(&options)
	}

	publishing, err := msg.publishing(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to build publishing: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	return q.channel.Publish(ctx, exchange, routingKey, options.mandatory, false, publishing)
}
