package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHttpStatusRecorderCapturesCode(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
	rec.WriteHeader(http.StatusAccepted)
	if rec.Status != http.StatusAccepted || w.Code != http.StatusAccepted {
		t.Errorf("recorder %d, writer %d", rec.Status, w.Code)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(indexingOutcomes.WithLabelValues("INDEXED"))
	RecordIndexingOutcome("INDEXED")
	if got := testutil.ToFloat64(indexingOutcomes.WithLabelValues("INDEXED")); got != before+1 {
		t.Errorf("outcomes = %v, want %v", got, before+1)
	}

	IncrementJobsInQueue()
	IncrementJobsInQueue()
	DecrementJobsInQueue()
	if got := testutil.ToFloat64(countJobsInQueue); got < 1 {
		t.Errorf("queue gauge = %v", got)
	}
	CaptureExecutionMetrics("embed", 20*time.Millisecond)
	CaptureJobMetrics("INDEXED", time.Second)
}
