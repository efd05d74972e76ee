package tenant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "licensegate_tenant_cache_lookups_total",
		Help: "Tenant snapshot cache lookups by result.",
	},
	[]string{"result"},
)
