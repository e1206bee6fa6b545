package main

import "github.com/prometheus/client_golang/prometheus"

var (
	datagramsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "udptimer_datagrams_received_total",
			Help: "Total number of UDP datagrams received",
		},
	)

	datagramsInvalidTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "udptimer_datagrams_invalid_total",
			Help: "Total number of datagrams too short to carry a timestamp",
		},
	)

	reportsEmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "udptimer_reports_emitted_total",
			Help: "Total number of statistics reports emitted",
		},
	)

	latencyMean = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "udptimer_latency_mean_us",
			Help: "Mean latency over all stored samples (microseconds)",
		},
	)

	latencyStdDev = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "udptimer_latency_stddev_us",
			Help: "Sample standard deviation of stored latencies (microseconds)",
		},
	)

	latencyAutocorr = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "udptimer_latency_lag1_autocorr",
			Help: "Lag-1 autocorrelation of stored latencies in arrival order",
		},
	)

	samplesStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "udptimer_samples_stored",
			Help: "Number of latency samples currently held in the store",
		},
	)

	samplesDropped = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "udptimer_samples_dropped",
			Help: "Samples discarded after the store reached its capacity ceiling",
		},
	)
)

func registerMetrics() {
	prometheus.MustRegister(
		datagramsReceivedTotal,
		datagramsInvalidTotal,
		reportsEmittedTotal,
		latencyMean,
		latencyStdDev,
		latencyAutocorr,
		samplesStored,
		samplesDropped,
	)
}
