package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess      = "success"
	ResultInsufficient = "insufficient_stock"
	ResultNotFound     = "not_found"
	ResultError        = "error"
)

// Deduction stok düşüm motorunun sayaçları. nil alıcı ile çağrılabilir.
type Deduction struct {
	items        *prometheus.CounterVec
	orders       *prometheus.CounterVec
	insufficient *prometheus.CounterVec
}

func NewDeduction(reg prometheus.Registerer) *Deduction {
	m := &Deduction{
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue",
			Subsystem: "deduction",
			Name:      "items_total",
			Help:      "Order items processed by the inventory deduction engine.",
		}, []string{"strategy", "result"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue",
			Subsystem: "deduction",
			Name:      "orders_total",
			Help:      "Orders processed by the inventory deduction engine.",
		}, []string{"mode", "result"}),
		insufficient: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue",
			Subsystem: "deduction",
			Name:      "insufficient_stock_total",
			Help:      "Deductions rejected because of insufficient stock.",
		}, []string{"entity"}),
	}
	if reg != nil {
		reg.MustRegister(m.items, m.orders, m.insufficient)
	}
	return m
}

func (m *Deduction) ObserveItem(strategy, result string) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(strategy, result).Inc()
}

func (m *Deduction) ObserveOrder(mode, result string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(mode, result).Inc()
}

func (m *Deduction) ObserveInsufficient(entity string) {
	if m == nil {
		return
	}
	m.insufficient.WithLabelValues(entity).Inc()
}
