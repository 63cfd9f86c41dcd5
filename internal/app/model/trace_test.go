package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrace_SetElapsed(t *testing.T) {
	var tr Trace
	tr.SetElapsed(1*time.Hour + 2*time.Minute + 3*time.Second + 456*time.Millisecond)

	assert.Equal(t, int64(3723456), tr.RunTimeMillis)
	assert.Equal(t, "Elapsed:01:02:03.45", tr.RunTimeSummary)
}

func TestTrace_Marker(t *testing.T) {
	tr := Trace{BeaconTimestamp: time.Date(2024, 5, 1, 10, 0, 0, 789*int(time.Millisecond)+123, time.UTC)}
	assert.Equal(t, "789", tr.Marker())
}

func TestTaskKind_Subject(t *testing.T) {
	assert.Equal(t, "blt.tasks.event", TaskKindEvent.Subject())
	assert.Equal(t, "blt.tasks.audit", NewAuditTask("1", Trace{}).Kind.Subject())
}
