package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDeductionCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDeduction(reg)

	m.ObserveItem("plain_stock", ResultSuccess)
	m.ObserveItem("plain_stock", ResultSuccess)
	m.ObserveItem("direct_recipe", ResultInsufficient)
	m.ObserveOrder("atomic", ResultError)
	m.ObserveInsufficient("ingredient")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.items.WithLabelValues("plain_stock", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.items.WithLabelValues("direct_recipe", ResultInsufficient)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orders.WithLabelValues("atomic", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.insufficient.WithLabelValues("ingredient")))
}

func TestNilDeductionIsNoop(t *testing.T) {
	var m *Deduction
	assert.NotPanics(t, func() {
		m.ObserveItem("plain_stock", ResultSuccess)
		m.ObserveOrder("best_effort", ResultSuccess)
		m.ObserveInsufficient("product")
	})
}
