package barbershop

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "barbershop"

type shopMetrics struct {
	arrivals    prometheus.Counter
	admitted    prometheus.Counter
	rejected    *prometheus.CounterVec
	serviced    prometheus.Counter
	queueLength prometheus.Gauge
	serviceTime prometheus.Histogram
}

func newShopMetrics(reg prometheus.Registerer, chairs int) *shopMetrics {
	m := &shopMetrics{
		arrivals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "arrivals_total",
			Help:      "Customers that walked in.",
		}),
		admitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "admitted_total",
			Help:      "Customers that took a chair.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejected_total",
			Help:      "Customers turned away, by reason.",
		}, []string{"reason"}),
		serviced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "serviced_total",
			Help:      "Customers whose haircut finished.",
		}),
		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "queue_length",
			Help:        "Occupied waiting room chairs.",
			ConstLabels: prometheus.Labels{"chairs": strconv.Itoa(chairs)},
		}),
		serviceTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "service_seconds",
			Help:      "Time the barber spent on one customer.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	reg.MustRegister(m.arrivals, m.admitted, m.rejected, m.serviced, m.queueLength, m.serviceTime)
	return m
}
