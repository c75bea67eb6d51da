package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ActionsMetricsClient counts use-case executions on the default Prometheus
// registry; the decorator layer keys it by action name and outcome.
type ActionsMetricsClient struct {
	actions *prometheus.CounterVec
}

func NewActionsMetricsClient() *ActionsMetricsClient {
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "actions_total",
		Help:      "Use-case executions by action key.",
	}, []string{"key"})

	prometheus.MustRegister(actions)

	return &ActionsMetricsClient{actions: actions}
}

func (c *ActionsMetricsClient) Inc(key string, value int) {
	c.actions.WithLabelValues(key).Add(float64(value))
}
