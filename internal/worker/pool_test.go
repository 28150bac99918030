package worker

import (
	"sync/atomic"
	"testing"

	"github.com/baharkarakas/rentacar-backend/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllJobsBeforeStop(t *testing.T) {
	p := NewPool(3, logger.Discard())
	var n atomic.Int32
	for i := 0; i < 50; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Stop()
	assert.Equal(t, int32(50), n.Load())
}

func TestPoolSurvivesPanics(t *testing.T) {
	p := NewPool(1, logger.Discard())
	var n atomic.Int32
	p.Submit(func() { panic("boom") })
	p.Submit(func() { n.Add(1) })
	p.Stop()
	assert.Equal(t, int32(1), n.Load())
}

func TestSubmitAfterStopRunsInline(t *testing.T) {
	p := NewPool(1, logger.Discard())
	p.Stop()
	p.Stop()

	ran := false
	p.Submit(func() { ran = true })
	assert.True(t, ran)
}
