package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		menusCreatedTotal,
		menusDeletedTotal,
		claimsTotal,
		itemsUpsertedTotal,
	)
}

var (
	menusCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "menus_created_total",
			Help: "Total number of shop profiles created.",
		},
	)

	menusDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "menus_deleted_total",
			Help: "Total number of shop profiles deleted.",
		},
	)

	claimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_claims_total",
			Help: "Readymade shop claims by result.",
		},
		[]string{"result"}, // 'success', 'rejected', 'error'
	)

	itemsUpsertedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_items_upserted_total",
			Help: "Bulk upsert outcomes by kind.",
		},
		[]string{"kind"}, // 'inserted', 'updated'
	)
)

func IncMenuCreated() { menusCreatedTotal.Inc() }
func IncMenuDeleted() { menusDeletedTotal.Inc() }

func IncClaim(result string) { claimsTotal.WithLabelValues(result).Inc() }

func AddItemsUpserted(inserted, updated int) {
	itemsUpsertedTotal.WithLabelValues("inserted").Add(float64(inserted))
	itemsUpsertedTotal.WithLabelValues("updated").Add(float64(updated))
}
