package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ip_filter"

// Metrics holds run statistics on a private registry; they are dumped once
// at the end of a run.
type Metrics struct {
	registry *prometheus.Registry

	LinesRead         prometheus.Counter
	BytesRead         prometheus.Counter
	AddressesIngested prometheus.Counter
	UniqueAddresses   prometheus.Gauge
	IndexedOctets     prometheus.Gauge
	QueriesTotal      *prometheus.CounterVec
	QueryResultSize   *prometheus.GaugeVec
	IngestSeconds     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Input lines consumed before end of input",
		}),
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Input bytes consumed before end of input",
		}),
		AddressesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "addresses_ingested_total",
			Help:      "Addresses inserted into the pool, duplicates included",
		}),
		UniqueAddresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unique_addresses",
			Help:      "Distinct addresses in the pool",
		}),
		IndexedOctets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_octets",
			Help:      "Distinct octet values with a reverse index bucket",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries executed by kind",
		}, []string{"kind"}),
		QueryResultSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "query_result_addresses",
			Help:      "Number of addresses returned per query",
		}, []string{"query"}),
		IngestSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time spent reading and indexing the input",
		}),
	}
	m.registry.MustRegister(
		m.LinesRead,
		m.BytesRead,
		m.AddressesIngested,
		m.UniqueAddresses,
		m.IndexedOctets,
		m.QueriesTotal,
		m.QueryResultSize,
		m.IngestSeconds,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteFile dumps the registry in the Prometheus text format.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
