package resolve

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_RunsAllSubmitted(t *testing.T) {
	d := newDispatcher(4)
	defer d.stop()

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		d.submit(func() {
			defer wg.Done()
			count.Add(1)
		})
	}
	wg.Wait()

	assert.Equal(t, int64(100), count.Load())
}

func TestDispatcher_StopIsIdempotent(t *testing.T) {
	d := newDispatcher(0)
	d.stop()
	d.stop()
}
