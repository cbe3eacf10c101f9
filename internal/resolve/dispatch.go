package resolve

import (
	"runtime"
	"sync"
)

// dispatcher runs submitted functions on a fixed-size worker pool.
// Candidates are independent, so adjustment and invariant checks for
// distinct candidates run concurrently through one of these.
type dispatcher struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// newDispatcher starts a pool of the given size. Zero or negative falls
// back to GOMAXPROCS.
func newDispatcher(size int) *dispatcher {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
		if size <= 0 {
			size = 1
		}
	}
	d := &dispatcher{tasks: make(chan func(), size*2)}
	d.wg.Add(size)
	for i := 0; i < size; i++ {
		go d.worker()
	}
	return d
}

func (d *dispatcher) worker() {
	defer d.wg.Done()
	for fn := range d.tasks {
		if fn != nil {
			fn()
		}
	}
}

// submit queues fn for execution, blocking when the pool is saturated.
func (d *dispatcher) submit(fn func()) {
	d.tasks <- fn
}

// stop closes the pool and waits for in-flight work to finish.
// Safe to call more than once.
func (d *dispatcher) stop() {
	d.once.Do(func() {
		close(d.tasks)
		d.wg.Wait()
	})
}
