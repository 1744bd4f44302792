package recorder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingRecorder struct {
	snapshots, analyses, closed int
	err                         error
}

func (c *countingRecorder) RecordSnapshot(*SnapshotEvent) error {
	c.snapshots++
	return c.err
}

func (c *countingRecorder) RecordAnalysis(*AnalysisEvent) error {
	c.analyses++
	return c.err
}

func (c *countingRecorder) Close() error {
	c.closed++
	return c.err
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	boom := errors.New("disk full")
	ok, failing := &countingRecorder{}, &countingRecorder{err: boom}
	m := Multi{failing, ok, NewNoopRecorder()}

	assert.ErrorIs(t, m.RecordSnapshot(&SnapshotEvent{Version: 1}), boom)
	assert.ErrorIs(t, m.RecordAnalysis(&AnalysisEvent{Version: 1}), boom)
	assert.ErrorIs(t, m.Close(), boom)

	assert.Equal(t, 1, ok.snapshots)
	assert.Equal(t, 1, ok.analyses)
	assert.Equal(t, 1, ok.closed)

	assert.NoError(t, Multi{ok}.RecordSnapshot(&SnapshotEvent{}))
}
