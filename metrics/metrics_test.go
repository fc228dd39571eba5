package metrics

import (
	"testing"
	"time"

	"github.com/meikuraledutech/caseflow"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveMutation(t *testing.T) {
	r := New()
	r.ObserveMutation(caseflow.OpAppend, true)
	r.ObserveMutation(caseflow.OpAppend, true)
	r.ObserveMutation(caseflow.OpInsertAfter, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.mutations.WithLabelValues("append", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.mutations.WithLabelValues("insert_after", "false")))
}

func TestObserveRun(t *testing.T) {
	r := New()
	r.ObserveRun(caseflow.RunPass, 2*time.Second)
	r.ObserveRun(caseflow.RunFail, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("fail")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))
}
