package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		couponOperationsTotal,
		couponDeductedValueTotal,
	)
}

var (
	couponOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_operations_total",
			Help: "Coupon lifecycle operations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	couponDeductedValueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coupon_deducted_value_total",
			Help: "Sum of coupon balance deducted, in minor currency units.",
		},
	)
)

func IncCouponOperation(operation, result string) {
	couponOperationsTotal.WithLabelValues(norm(operation), norm(result)).Inc()
}

func AddCouponDeducted(amount int64) {
	if amount <= 0 {
		return
	}
	couponDeductedValueTotal.Add(float64(amount))
}

func norm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return s
}
