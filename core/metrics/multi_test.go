package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordEvaluation(EvaluationRecord) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordIteration(IterationRecord) error {
	r.count++
	return nil
}

// evalOnly implements only the base interface.
type evalOnly struct{ count int }

func (e *evalOnly) RecordEvaluation(EvaluationRecord) error {
	e.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &evalOnly{}
	m := NewMultiSink(s1, s2, s3)

	assert.NoError(t, m.RecordEvaluation(EvaluationRecord{}))
	assert.NoError(t, m.RecordIteration(IterationRecord{}))
	assert.NoError(t, m.RecordImprovement(ImprovementRecord{}))
	assert.Equal(t, 2, s1.count)
	assert.Equal(t, 2, s2.count)
	assert.Equal(t, 1, s3.count)
}

func TestMultiSink_ContinuesAfterError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	err := NewMultiSink(s1, s2).RecordEvaluation(EvaluationRecord{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s2.count)
}

type closingSink struct {
	NopSink
	closed bool
}

func (c *closingSink) Close() { c.closed = true }

func TestMultiSink_Close(t *testing.T) {
	a, b := &closingSink{}, &closingSink{}
	m := NewMultiSink(a, NopSink{}, b)
	m.Close()
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
