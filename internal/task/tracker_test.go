package task

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type taskSpy struct {
	cancels atomic.Int32
}

func (s *taskSpy) Cancel() { s.cancels.Add(1) }

func TestTracker_TrackReplacesPrevious(t *testing.T) {
	tr := NewTracker()
	first, second := &taskSpy{}, &taskSpy{}

	tr.Track("row-1", first)
	tr.Track("row-1", second)

	assert.Equal(t, int32(1), first.cancels.Load())
	assert.Equal(t, int32(0), second.cancels.Load())
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_TrackSameTaskTwice(t *testing.T) {
	tr := NewTracker()
	task := &taskSpy{}

	tr.Track("row-1", task)
	tr.Track("row-1", task)

	assert.Equal(t, int32(0), task.cancels.Load())
}

func TestTracker_Cancel(t *testing.T) {
	tr := NewTracker()
	task := &taskSpy{}
	tr.Track("row-1", task)

	tr.Cancel("row-1")
	tr.Cancel("row-1")
	tr.Cancel("unknown")

	assert.Equal(t, int32(1), task.cancels.Load())
	assert.Equal(t, 0, tr.Len())
}

func TestTracker_Release(t *testing.T) {
	tr := NewTracker()
	old, current := &taskSpy{}, &taskSpy{}
	tr.Track("row-1", old)
	tr.Track("row-1", current)

	tr.Release("row-1", old)
	assert.Equal(t, 1, tr.Len())

	tr.Release("row-1", current)
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, int32(0), current.cancels.Load())
}

func TestTracker_CancelAll(t *testing.T) {
	tr := NewTracker()
	a, b := &taskSpy{}, &taskSpy{}
	tr.Track("a", a)
	tr.Track("b", b)

	tr.CancelAll()

	assert.Equal(t, int32(1), a.cancels.Load())
	assert.Equal(t, int32(1), b.cancels.Load())
	assert.Equal(t, 0, tr.Len())

	c := &taskSpy{}
	tr.Track("c", c)
	assert.Equal(t, int32(0), c.cancels.Load())
}

func TestTracker_CloseCancelsOutstandingAndLateTasks(t *testing.T) {
	tr := NewTracker()
	inFlight := &taskSpy{}
	tr.Track("row-1", inFlight)

	tr.Close()
	late := &taskSpy{}
	tr.Track("row-2", late)

	assert.Equal(t, int32(1), inFlight.cancels.Load())
	assert.Equal(t, int32(1), late.cancels.Load())
	assert.Equal(t, 0, tr.Len())
}
