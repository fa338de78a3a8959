package portscan

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "port_dashboard"

var metricsComputationsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "computations_total",
		Help:      "Number of port table computations",
	},
)

var metricsListerErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "lister_errors_total",
		Help:      "Number of failed listing command invocations",
	},
	[]string{"lister"},
)

var metricsOccupiedPorts = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "occupied_ports",
		Help:      "Number of listening ports observed by the last computation",
	},
)

var metricsComputeDurationSecondsHistogram = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "compute_time_seconds",
		Help:      "Duration of port table computation in seconds",
		Buckets:   []float64{0.008, 0.016, 0.032, 0.064, 0.128, 0.256, 0.512, 1.024, 2.048, 4.096, 8.192},
	},
)

func init() {
	prometheus.MustRegister(
		metricsComputationsTotal,
		metricsListerErrorsTotal,
		metricsOccupiedPorts,
		metricsComputeDurationSecondsHistogram,
	)
}
