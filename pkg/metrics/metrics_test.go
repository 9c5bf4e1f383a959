package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/brindle-bt/brindle/pkg/metrics"
)

func TestParseErrorsTotalIsLabeledByCode(t *testing.T) {
	metrics.ParseErrorsTotal.WithLabelValues("illegal_sequence").Inc()

	got := testutil.ToFloat64(metrics.ParseErrorsTotal.WithLabelValues("illegal_sequence"))
	assert.Equal(t, float64(1), got)
}

func TestStoreHitsAndMissesAreIndependentCounters(t *testing.T) {
	before := testutil.ToFloat64(metrics.StoreHitsTotal)
	metrics.StoreHitsTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.StoreHitsTotal))

	beforeMiss := testutil.ToFloat64(metrics.StoreMissesTotal)
	metrics.StoreMissesTotal.Inc()
	assert.Equal(t, beforeMiss+1, testutil.ToFloat64(metrics.StoreMissesTotal))
}
