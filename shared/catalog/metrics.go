package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "style_catalog_refreshes_total",
		Help: "Total number of full style package catalog reloads.",
	})
)
