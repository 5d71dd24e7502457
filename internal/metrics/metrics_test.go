package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	m := New()
	m.JobHandled("block-sync", OutcomeOK, 10*time.Millisecond)
	m.JobHandled("block-sync", OutcomeOK, 20*time.Millisecond)
	m.EventsDropped("no_price", 3)
	m.ObserveCursor("0xpool", 1, 21202122)

	require.Equal(t, 2.0, testutil.ToFloat64(m.jobs.WithLabelValues("block-sync", OutcomeOK)))
	require.Equal(t, 3.0, testutil.ToFloat64(m.eventsDropped.WithLabelValues("no_price")))
	require.Equal(t, 21202122.0, testutil.ToFloat64(m.cursor.WithLabelValues("0xpool", "1")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "feesync_jobs_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.JobHandled("q", OutcomeRetry, time.Second)
	m.TaskEnqueued()
	m.EventsFetched(1)
	m.TransactionsStored(1)
	m.ObserveHead("p", 1, 1)
	require.Nil(t, m.Registry())
}
