// Package observe provides OpenTelemetry metrics for the playlist creation
// pipeline.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exported via
// a Prometheus bridge set up by [InitProvider], so they can be scraped from
// the optional /metrics endpoint. All recording helpers are nil-safe: a nil
// *Metrics records nothing, which keeps instrumentation optional in tests.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all pipeline metrics.
const meterName = "github.com/brookscl/playlist-creator"

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// remote LLM and catalog API calls.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// Metrics holds all OpenTelemetry metric instruments for the pipeline.
// The underlying OTel types handle their own synchronisation.
type Metrics struct {
	// ExtractionDuration tracks end-to-end LLM extraction latency, including
	// retries.
	ExtractionDuration metric.Float64Histogram

	// SearchDuration tracks per-song catalog search latency.
	SearchDuration metric.Float64Histogram

	// LLMRequests counts completion API attempts. Attributes:
	//   attribute.String("status", "ok"|"error")
	LLMRequests metric.Int64Counter

	// LLMRetries counts completion retries after transient failures.
	LLMRetries metric.Int64Counter

	// CatalogRequests counts catalog search calls. Attributes:
	//   attribute.String("backend", ...), attribute.String("status", "ok"|"error")
	CatalogRequests metric.Int64Counter

	// SongsExtracted counts songs accepted from extraction responses, after
	// normalization and dedup.
	SongsExtracted metric.Int64Counter

	// Matches counts matched songs by initial status. Attributes:
	//   attribute.String("status", "auto"|"pending"|"skipped")
	Matches metric.Int64Counter
}

// NewMetrics creates a fully initialised [Metrics] using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ExtractionDuration, err = m.Float64Histogram("playlist.extraction.duration",
		metric.WithDescription("Latency of LLM song extraction, including retries."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SearchDuration, err = m.Float64Histogram("playlist.search.duration",
		metric.WithDescription("Latency of per-song catalog search."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LLMRequests, err = m.Int64Counter("playlist.llm.requests",
		metric.WithDescription("Completion API attempts."),
	); err != nil {
		return nil, err
	}
	if met.LLMRetries, err = m.Int64Counter("playlist.llm.retries",
		metric.WithDescription("Completion retries after transient failures."),
	); err != nil {
		return nil, err
	}
	if met.CatalogRequests, err = m.Int64Counter("playlist.catalog.requests",
		metric.WithDescription("Catalog search calls."),
	); err != nil {
		return nil, err
	}
	if met.SongsExtracted, err = m.Int64Counter("playlist.songs.extracted",
		metric.WithDescription("Songs accepted from extraction after dedup."),
	); err != nil {
		return nil, err
	}
	if met.Matches, err = m.Int64Counter("playlist.matches",
		metric.WithDescription("Matched songs by initial status."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordLLMRequest counts one completion attempt. Nil-safe.
func (m *Metrics) RecordLLMRequest(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.LLMRequests.Add(ctx, 1, metric.WithAttributes(statusAttr(ok)))
}

// RecordLLMRetry counts one completion retry. Nil-safe.
func (m *Metrics) RecordLLMRetry(ctx context.Context) {
	if m == nil {
		return
	}
	m.LLMRetries.Add(ctx, 1)
}

// RecordExtraction records total extraction latency and the number of songs
// accepted. Nil-safe.
func (m *Metrics) RecordExtraction(ctx context.Context, seconds float64, accepted int) {
	if m == nil {
		return
	}
	m.ExtractionDuration.Record(ctx, seconds)
	m.SongsExtracted.Add(ctx, int64(accepted))
}

// RecordSearch records one per-song catalog search. Nil-safe.
func (m *Metrics) RecordSearch(ctx context.Context, backend string, seconds float64, ok bool) {
	if m == nil {
		return
	}
	m.SearchDuration.Record(ctx, seconds)
	m.CatalogRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		statusAttr(ok),
	))
}

// RecordMatch counts one matched song by its initial status. Nil-safe.
func (m *Metrics) RecordMatch(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.Matches.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func statusAttr(ok bool) attribute.KeyValue {
	if ok {
		return attribute.String("status", "ok")
	}
	return attribute.String("status", "error")
}
