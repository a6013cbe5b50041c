package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts scanner activity for one process.
type Metrics struct {
	ScansTotal     prometheus.Counter
	ObjectsScanned prometheus.Counter
	ObjectsValid   prometheus.Counter
	ObjectsInvalid prometheus.Counter
	ObjectsIndexed prometheus.Counter
}

// NewMetrics registers the scanner counters with reg. Pass a fresh
// registry in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fmu_dataio_catalog_scans_total",
			Help: "Number of case tree scans started",
		}),
		ObjectsScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "fmu_dataio_catalog_objects_scanned_total",
			Help: "Number of metadata sidecars inspected",
		}),
		ObjectsValid: factory.NewCounter(prometheus.CounterOpts{
			Name: "fmu_dataio_catalog_objects_valid_total",
			Help: "Number of sidecars that passed validation",
		}),
		ObjectsInvalid: factory.NewCounter(prometheus.CounterOpts{
			Name: "fmu_dataio_catalog_objects_invalid_total",
			Help: "Number of sidecars that failed parsing or validation",
		}),
		ObjectsIndexed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fmu_dataio_catalog_objects_indexed_total",
			Help: "Number of catalog entries written",
		}),
	}
}
