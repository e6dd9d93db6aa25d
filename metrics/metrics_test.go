package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/warp/absence-tracker/metrics"
)

func TestMetrics_CountersAndGauges(t *testing.T) {
	m := metrics.New()

	m.IncrementPeopleCreated()
	m.IncrementPeopleCreated()
	m.IncrementLeaveRegistered("sick")
	m.IncrementRejected("register_leave", "conflict")
	m.SetOnLeave(map[string]int{"sick": 1, "vab": 0}, 2)
	m.ObserveRequest("GET", "/api/people", 200, 0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PeopleCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeaveRegistered.WithLabelValues("sick")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedOperations.WithLabelValues("register_leave", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OnLeave.WithLabelValues("sick")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.People))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/people", "200")))
}

func TestMetrics_InstancesAreIndependent(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.IncrementPeopleDeleted()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.PeopleDeleted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PeopleDeleted))

	families, err := a.Gatherer().Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
