package config

import (
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
)

type (
	ServiceConfig struct {
		AppConfig AppConfig     `json:"app_config"`
		Logging   LoggingConfig `json:"logging"`
		Telemetry Telemetry     `json:"telemetry"`
		OpsServer OpsConfig     `json:"ops_server"`
		Storage   StorageConfig `json:"storage"`
		Broker    BrokerConfig  `json:"broker"`
		Outbox    OutboxConfig  `json:"outbox"`
		Lease     LeaseConfig   `json:"lease"`
		Backoff   BackoffConfig `json:"backoff"`
	}

	AppConfig struct {
		ServiceName    string `envconfig:"APP_SERVICE_NAME" default:"svc-order-outbox" json:"service_name"`
		ServiceVersion string `envconfig:"APP_SERVICE_VERSION" default:"0.0.0" json:"service_version"`
		CommitSHA      string `envconfig:"APP_COMMIT_SHA" default:"unknown" json:"commit_sha"`
		Env            string `envconfig:"APP_ENVIRONMENT" default:"unknown" json:"env"`
	}

	LoggingConfig struct {
		Level  string `envconfig:"LOGGING_LEVEL" default:"info" json:"level"`
		Format string `envconfig:"LOGGING_FORMAT" default:"json" json:"format"`
	}

	Telemetry struct {
		OtelGRPCHost string `envconfig:"OTEL_HOST" json:"otel_grpc_host"`
		OtelGRPCPort string `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`

		Metrics Metrics `json:"metrics"`
		Traces  Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"false" json:"enabled"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1" json:"sampler_ratio"`
	}

	// OpsConfig is the operational HTTP listener serving health and metrics.
	OpsConfig struct {
		Enabled      bool          `envconfig:"OPS_SERVER_ENABLED" default:"true" json:"enabled"`
		Host         string        `envconfig:"OPS_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port         int           `envconfig:"OPS_SERVER_PORT" default:"8081" json:"port"`
		ReadTimeout  time.Duration `envconfig:"OPS_SERVER_READ_TIMEOUT" default:"5s" json:"read_timeout"`
		WriteTimeout time.Duration `envconfig:"OPS_SERVER_WRITE_TIMEOUT" default:"10s" json:"write_timeout"`
	}

	StorageConfig struct {
		Host            string        `envconfig:"POSTGRES_HOST" default:"postgres" json:"host"`
		Port            int           `envconfig:"POSTGRES_PORT" default:"5432" json:"port"`
		Database        string        `envconfig:"POSTGRES_DATABASE" default:"orders" json:"database"`
		Username        string        `envconfig:"POSTGRES_USERNAME" default:"postgres" json:"username"`
		Password        string        `envconfig:"POSTGRES_PASSWORD" default:"" json:"password,omitempty"`
		SSLMode         string        `envconfig:"POSTGRES_SSL_MODE" default:"disable" json:"ssl_mode"`
		MaxOpenConns    int           `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"25" json:"max_open_conns"`
		MaxIdleConns    int           `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"5" json:"max_idle_conns"`
		ConnMaxLifetime time.Duration `envconfig:"POSTGRES_CONN_MAX_LIFETIME" default:"5m" json:"conn_max_lifetime"`
		ConnMaxIdleTime time.Duration `envconfig:"POSTGRES_CONN_MAX_IDLE_TIME" default:"5m" json:"conn_max_idle_time"`
		ConnectTimeout  time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		QueryTimeout    time.Duration `envconfig:"POSTGRES_QUERY_TIMEOUT" default:"30s" json:"query_timeout"`

		// SaveRetryCount bounds the transient-fault retries of a unit of
		// work flush. Commits are never retried.
		SaveRetryCount int `envconfig:"POSTGRES_SAVE_RETRY_COUNT" default:"3" json:"save_retry_count"`
	}

	BrokerConfig struct {
		Host           string        `envconfig:"RABBITMQ_HOST" default:"rabbitmq" json:"host"`
		Port           int           `envconfig:"RABBITMQ_PORT" default:"5672" json:"port"`
		Username       string        `envconfig:"RABBITMQ_USERNAME" default:"admin" json:"username"`
		Password       string        `envconfig:"RABBITMQ_PASSWORD" default:"" json:"password,omitempty"`
		VirtualHost    string        `envconfig:"RABBITMQ_VIRTUAL_HOST" default:"/" json:"virtual_host"`
		ExchangeName   string        `envconfig:"RABBITMQ_EXCHANGE_NAME" default:"order-events" json:"exchange_name"`
		Destination    string        `envconfig:"RABBITMQ_DESTINATION" default:"" json:"destination"`
		ConnectTimeout time.Duration `envconfig:"RABBITMQ_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		Heartbeat      time.Duration `envconfig:"RABBITMQ_HEARTBEAT" default:"10s" json:"heartbeat"`
		Durable        bool          `envconfig:"RABBITMQ_DURABLE" default:"true" json:"durable"`
		AutoDelete     bool          `envconfig:"RABBITMQ_AUTO_DELETE" default:"false" json:"auto_delete"`

		CircuitBreaker CircuitBreakerConfig `envconfig:"RABBITMQ_CIRCUIT_BREAKER" json:"circuit_breaker"`
	}

	OutboxConfig struct {
		PollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"10s" json:"poll_interval"`
		BatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"20" json:"batch_size"`
		MaxAttempts  int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"5" json:"max_attempts"`
	}

	// LeaseConfig elects a single active relay across process instances.
	// With an empty address the relay runs without a lease, which is only
	// safe for single-instance deployments.
	LeaseConfig struct {
		Addr         string        `envconfig:"LEASE_REDIS_ADDR" default:"" json:"addr"`
		Password     string        `envconfig:"LEASE_REDIS_PASSWORD" default:"" json:"password,omitempty"`
		DB           int           `envconfig:"LEASE_REDIS_DB" default:"0" json:"db"`
		Key          string        `envconfig:"LEASE_KEY" default:"svc-order-outbox:relay-lease" json:"key"`
		TTL          time.Duration `envconfig:"LEASE_TTL" default:"30s" json:"ttl"`
		DialTimeout  time.Duration `envconfig:"LEASE_REDIS_DIAL_TIMEOUT" default:"5s" json:"dial_timeout"`
		ReadTimeout  time.Duration `envconfig:"LEASE_REDIS_READ_TIMEOUT" default:"3s" json:"read_timeout"`
		WriteTimeout time.Duration `envconfig:"LEASE_REDIS_WRITE_TIMEOUT" default:"3s" json:"write_timeout"`
	}

	BackoffConfig struct {
		// BaseDelay is the amount of time to backoff after the first failure.
		BaseDelay time.Duration `envconfig:"BACKOFF_BASE_DELAY" default:"1s" json:"base_delay"`
		// Multiplier is the factor with which to multiply backoffs after a
		// failed retry. Should ideally be greater than 1.
		Multiplier float64 `envconfig:"BACKOFF_MULTIPLIER" default:"2" json:"multiplier"`
		// Jitter is the factor with which backoffs are randomized.
		Jitter float64 `envconfig:"BACKOFF_JITTER" default:"0.2" json:"jitter"`
		// MaxDelay is the upper bound of backoff delay.
		MaxDelay time.Duration `envconfig:"BACKOFF_MAX_DELAY" default:"10s" json:"max_delay"`
	}

	CircuitBreakerConfig struct {
		MaxRequests uint32        `envconfig:"MAX_REQUESTS" default:"3" json:"max_requests"`
		Interval    time.Duration `envconfig:"INTERVAL" default:"10s" json:"interval"`
		Timeout     time.Duration `envconfig:"TIMEOUT" default:"60s" json:"timeout"`
	}
)
