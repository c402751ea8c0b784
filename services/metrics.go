package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_bulk_import_runs_total",
		Help: "Bulk import runs by outcome.",
	}, []string{"outcome"})

	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_bulk_import_rows_total",
		Help: "Bulk import data rows by result.",
	}, []string{"result"})
)
