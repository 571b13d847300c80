package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "customization_evaluations_total",
		Help: "Total number of completion evaluations performed.",
	})
	completionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "customization_completions_total",
		Help: "Total number of evaluations that reported a complete customization.",
	})
	visitedPersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "customization_visited_persist_failures_total",
		Help: "Total number of failed attempts to persist visited step keys.",
	})
)
