package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/emporium-dev/emporium/pkg/enums"
)

// ShopMetrics counts cart and order activity.
type ShopMetrics struct {
	cartMutations *prometheus.CounterVec
	ordersPlaced  *prometheus.CounterVec
	orderValue    prometheus.Counter
	statusChanges *prometheus.CounterVec
	payments      *prometheus.CounterVec
}

// NewShopMetrics registers the storefront metrics on the provided registerer.
func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	if reg == nil {
		return &ShopMetrics{}
	}
	m := &ShopMetrics{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Cart mutations by action.",
		}, []string{"action"}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders created at checkout by payment method.",
		}, []string{"payment_method"}),
		orderValue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_value_total",
			Help: "Sum of order totals in currency units.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_status_changes_total",
			Help: "Admin order status changes by target status.",
		}, []string{"status"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_requests_total",
			Help: "Payment gateway requests by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.cartMutations, m.ordersPlaced, m.orderValue, m.statusChanges, m.payments)
	return m
}

func (m *ShopMetrics) CartMutation(action string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(action)).Inc()
}

func (m *ShopMetrics) OrderPlaced(method enums.PaymentMethod, total int64) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(method.String())).Inc()
	if total > 0 {
		m.orderValue.Add(float64(total))
	}
}

func (m *ShopMetrics) StatusChanged(status enums.OrderStatus) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status.String())).Inc()
}

// PaymentRequested records a gateway call; outcome is "ok" or "error".
func (m *ShopMetrics) PaymentRequested(outcome string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(outcome)).Inc()
}
