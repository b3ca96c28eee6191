package console

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pageViews = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "guard_console",
		Name:      "page_views_total",
		Help:      "Console navigations by resolved route path (or not_found) and method.",
	},
	[]string{"route", "method"},
)
