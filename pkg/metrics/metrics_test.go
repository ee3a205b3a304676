package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_BookingOutcome(t *testing.T) {
	m := NewWithRegistry("appointment-test", prometheus.NewRegistry())

	m.BookingOutcome(OutcomeReserved)
	m.BookingOutcome(OutcomeReserved)
	m.BookingOutcome(OutcomeFull)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingOutcomes.WithLabelValues(OutcomeReserved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingOutcomes.WithLabelValues(OutcomeFull)))
}

func TestMetrics_SequenceAllocatedStatus(t *testing.T) {
	m := NewWithRegistry("appointment-test", prometheus.NewRegistry())

	m.SequenceAllocated("postgres", nil)
	m.SequenceAllocated("postgres", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sequenceAllocations.WithLabelValues("postgres", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sequenceAllocations.WithLabelValues("postgres", "error")))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.BookingOutcome(OutcomeConflict)
		m.BookingTransition(TransitionCancelled)
		m.ObserveHTTP("GET", "/x", 200, time.Millisecond)
		m.ObserveDBQuery("exec", nil, time.Millisecond)
	})
}
