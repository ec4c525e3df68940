package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	DocumentsLoaded     *prometheus.CounterVec
	RecordsExtracted    prometheus.Counter
	PacketsGenerated    *prometheus.CounterVec
	CoherenceViolations *prometheus.CounterVec
	ProcessingTime      prometheus.Histogram
	ErrorsCount         *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_loaded_total",
			Help:      "The total number of input documents processed, by outcome",
		}, []string{"status"}),
		RecordsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_extracted_total",
			Help:      "The total number of assignment records extracted from input documents",
		}),
		PacketsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_generated_total",
			Help:      "The total number of outbound documents generated",
		}, []string{"kind"}),
		CoherenceViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coherence_violations_total",
			Help:      "The total number of date coherence violations reported",
		}, []string{"kind"}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_processing_seconds",
			Help:      "Time taken to read and check one input document",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// NewNopMetrics creates metrics on a throwaway registry
func NewNopMetrics() *Metrics {
	return NewMetrics("pilott", prometheus.NewRegistry())
}

// WriteTextfile writes every metric gathered from g in the textfile collector format
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
