package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		couponsRedeemedTotal,
		subscriptionsExpiredTotal,
	)
}

var (
	couponsRedeemedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupons_redeemed_total",
			Help: "Coupon redemptions by source (claim or direct).",
		},
		[]string{"source"},
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions cleared by the expiry worker.",
		},
	)
)

func IncCouponRedeemed(source string) {
	couponsRedeemedTotal.WithLabelValues(source).Inc()
}

func IncSubscriptionsExpired(count int) {
	subscriptionsExpiredTotal.Add(float64(count))
}
