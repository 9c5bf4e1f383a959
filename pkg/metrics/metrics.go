// Package metrics registers this module's Prometheus counters and
// histograms: codec throughput and depth, and content-store hit/miss
// ratio. cmd/brindled exposes them over HTTP; nothing outside this package
// needs to touch the prometheus API directly.
package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	prometheus.MustRegister(
		ParseDurationMilliseconds,
		SerializeDurationMilliseconds,
		ParseDepth,
		ParseErrorsTotal,
		MergeOperationsTotal,
		StoreHitsTotal,
		StoreMissesTotal,
		RedisActiveConns,
	)
}

var (
	// ParseDurationMilliseconds records how long Parse/ParseView took to
	// decode one top-level value.
	ParseDurationMilliseconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "brindle_parse_duration_milliseconds",
		Help:    "The time it takes to parse one bencoded value",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	// SerializeDurationMilliseconds records how long Serialize took to
	// encode one tree.
	SerializeDurationMilliseconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "brindle_serialize_duration_milliseconds",
		Help:    "The time it takes to serialize one variant tree",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	// ParseDepth records the maximum container nesting depth seen by a
	// single parse. Every call to Parse, ParseView, or ParseWithDepth
	// feeds this, since depth accounting happens inside bencode's shared
	// internal parse step regardless of which exported entry point a
	// caller used.
	ParseDepth = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "brindle_parse_depth",
		Help:    "The maximum container nesting depth of a parsed value",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	// ParseErrorsTotal counts rejected parses, labeled by the coded
	// failure classification (see errors.Code).
	ParseErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "brindle_parse_errors_total",
		Help: "The number of bencode inputs rejected during parsing",
	}, []string{"code"})

	// MergeOperationsTotal counts bencode.Merge calls that merged two dicts;
	// a call that returns early because either side is not a Dict is not
	// counted.
	MergeOperationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "brindle_merge_operations_total",
		Help: "The number of dict-over-dict merges performed",
	})

	// StoreHitsTotal counts content-store Get calls that found their
	// digest.
	StoreHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "brindle_store_hits_total",
		Help: "The number of content store lookups that found a blob",
	})

	// StoreMissesTotal counts content-store Get calls that did not.
	StoreMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "brindle_store_misses_total",
		Help: "The number of content store lookups that found nothing",
	})

	// RedisActiveConns tracks the redis backend's connection pool active
	// count. Only meaningful when the configured store driver is "redis";
	// cmd/brindled samples it on an interval since redigo's pool exposes
	// this as a point-in-time stat, not an event to hook.
	RedisActiveConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "brindle_redis_active_conns",
		Help: "The redis content store backend's active connection pool count",
	})
)
