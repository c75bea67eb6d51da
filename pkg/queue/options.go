package queue

import (
	"time"
)

type connectionOptions struct {
	heartbeat      *time.Duration
	connectTimeout *time.Duration
	logger         Logger
}

type connectionOption func(options *connectionOptions)

// WithLogger returns a connectionOption which sets the logger when a connection is created.
func WithLogger(l Logger) connectionOption {
	return func(o *connectionOptions) {
		o.logger = l
	}
}

// WithHeartbeat returns a connectionOption which sets the AMQP heartbeat interval.
func WithHeartbeat(d time.Duration) connectionOption {
	return func(o *connectionOptions) {
		o.heartbeat = &d
	}
}

// WithConnectionTimeout returns a connectionOption which sets the timeout used when establishing a connection.
func WithConnectionTimeout(timeout time.Duration) connectionOption {
	return func(o *connectionOptions) {
		o.connectTimeout = &timeout
	}
}

// publisherOptions configure a Publish call.
type publisherOptions struct {
	timeout   time.Duration
	mandatory bool
}

type publisherOption func(options *publisherOptions)

const (
	publishingTimeout = 3 * time.Second
)

// WithPublishingTimeout returns a publisherOption which sets the timeout used when
// publishing the message.
func WithPublishingTimeout(d time.Duration) publisherOption {
	return func(o *publisherOptions) {
		o.timeout = d
	}
}

// WithMandatory returns a publisherOption which makes the broker return
// unroutable messages instead of dropping them.
func WithMandatory() publisherOption {
	return func(o *publisherOptions) {
		o.mandatory = true
	}
}

func defaultPublisherOptions() publisherOptions {
	return publisherOptions{
		timeout: publishingTimeout,
	}
}
