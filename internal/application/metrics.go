package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	offersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offers_created_total",
		Help: "Number of offers created.",
	})

	offersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offers_deleted_total",
		Help: "Number of offers deleted.",
	})

	offerStatusToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_status_toggles_total",
		Help: "Number of offer status toggles, by resulting status.",
	}, []string{"status"})
)
