package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIngestOptions_Includes(t *testing.T) {
	all := IngestOptions{}
	assert.True(t, all.Includes(ProvenancePDF))
	assert.True(t, all.Includes(ProvenanceWeb))

	webOnly := IngestOptions{Provenances: []Provenance{ProvenanceWeb}}
	assert.True(t, webOnly.Includes(ProvenanceWeb))
	assert.False(t, webOnly.Includes(ProvenanceCSV))
}

func TestIngestReport_Totals(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	r := NewIngestReport("run-1", start)
	r.Documents[ProvenancePDF] = 2
	r.Documents[ProvenanceWeb] = 4

	assert.Equal(t, 6, r.TotalDocuments())
	assert.Zero(t, r.Duration())

	r.EndedAt = start.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, r.Duration())
}

func TestScheduledTask_IsDue(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task ScheduledTask
		want bool
	}{
		{"disabled", ScheduledTask{Enabled: false}, false},
		{"never scheduled", ScheduledTask{Enabled: true}, true},
		{"in the past", ScheduledTask{Enabled: true, NextRun: now.Add(-time.Minute)}, true},
		{"exactly now", ScheduledTask{Enabled: true, NextRun: now}, true},
		{"in the future", ScheduledTask{Enabled: true, NextRun: now.Add(time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsDue(now))
		})
	}
}

func TestScheduledTask_Finish(t *testing.T) {
	start := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)
	next := start.Add(24 * time.Hour)

	task := ScheduledTask{Enabled: true, LastError: "old"}
	task.Finish(TaskResult{StartedAt: start, EndedAt: end, Success: true}, next)
	assert.Equal(t, start, task.LastRun)
	assert.Equal(t, end, task.LastSuccess)
	assert.Equal(t, next, task.NextRun)
	assert.Empty(t, task.LastError)
	assert.True(t, task.Enabled)

	task.Finish(TaskResult{StartedAt: next, EndedAt: next, Error: "index locked"}, time.Time{})
	assert.Equal(t, end, task.LastSuccess, "failure keeps the last success")
	assert.Equal(t, "index locked", task.LastError)
	assert.False(t, task.Enabled)
}

func TestTaskResult_Duration(t *testing.T) {
	start := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, 90*time.Second, TaskResult{StartedAt: start, EndedAt: start.Add(90 * time.Second)}.Duration())
}

func TestEvalReport_Counts(t *testing.T) {
	r := EvalReport{Results: []EvalResult{{Passed: true}, {Passed: false}, {Passed: true}}}

	assert.Equal(t, 2, r.Passed())
	assert.Equal(t, 1, r.Failed())
}
