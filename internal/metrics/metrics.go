package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type StoreMetrics struct {
	OrdersCreated    prometheus.Counter
	CheckoutFailures prometheus.Counter
	StatusUpdates    *prometheus.CounterVec
}

func NewStoreMetrics() *StoreMetrics {
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trisena",
		Name:      "orders_created_total",
		Help:      "Total number of order records created at checkout.",
	})
	checkoutFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trisena",
		Name:      "checkout_line_failures_total",
		Help:      "Cart lines that failed to produce an order record.",
	})
	statusUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trisena",
		Name:      "order_status_updates_total",
		Help:      "Admin status transitions, labeled by target status.",
	}, []string{"status"})

	prometheus.MustRegister(ordersCreated, checkoutFailures, statusUpdates)
	return &StoreMetrics{
		OrdersCreated:    ordersCreated,
		CheckoutFailures: checkoutFailures,
		StatusUpdates:    statusUpdates,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
