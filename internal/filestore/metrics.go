package filestore

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes store occupancy and reaper activity.
type Metrics struct {
	evicted     prometheus.Counter
	sweepErrors prometheus.Counter
}

// NewMetrics registers the store collectors on reg.
func NewMetrics(reg prometheus.Registerer, store Store) (*Metrics, error) {
	m := &Metrics{
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "processed_files_evicted_total",
			Help: "Total number of unlocked files removed by the reaper.",
		}),
		sweepErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "processed_files_sweep_errors_total",
			Help: "Total number of reaper sweeps that reported an error.",
		}),
	}
	stored := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "processed_files_stored",
		Help: "Number of unlocked files currently held for download.",
	}, func() float64 { return float64(store.Len()) })

	for _, c := range []prometheus.Collector{m.evicted, m.sweepErrors, stored} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
