package logging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// PrometheusHook implements logrus.Hook, counting log lines by level.
type PrometheusHook struct {
	counter *prometheus.CounterVec
}

// NewPrometheusHook creates a hook and registers its counter with registerer.
func NewPrometheusHook(registerer prometheus.Registerer) (*PrometheusHook, error) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fairdiv_log_messages_total",
		Help: "Total number of log lines logged by level",
	}, []string{"level"})
	if err := registerer.Register(counter); err != nil {
		return nil, err
	}
	return &PrometheusHook{counter: counter}, nil
}

func (h *PrometheusHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.DebugLevel,
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
	}
}

func (h *PrometheusHook) Fire(entry *logrus.Entry) error {
	h.counter.WithLabelValues(entry.Level.String()).Inc()
	return nil
}
