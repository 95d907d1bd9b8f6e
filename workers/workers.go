// The workers package runs page fetches on a bounded pool. Grabbing stays
// logically sequential: callers submit indexed work and collect results in
// submission order, so emission order never depends on fetch completion
// order.

package workers

import (
	"sync"
)

// WorkItem is one unit of work. Name is used for diagnostics only.
type WorkItem interface {
	Run()
	Name() string
}

// Pool is a fixed-size worker pool.
type Pool struct {
	submit  chan WorkItem
	workerg sync.WaitGroup
}

// New creates a pool with n running workers. n below 1 means a single
// worker, which keeps execution strictly sequential.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{submit: make(chan WorkItem)}
	for i := 0; i < n; i++ {
		p.workerg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.workerg.Done()
	for wi := range p.submit {
		wi.Run()
	}
}

// Submit hands a work item to the pool. Blocks while all workers are busy.
func (p *Pool) Submit(wi WorkItem) {
	p.submit <- wi
}

// Stop waits for all submitted work to finish and releases the workers.
func (p *Pool) Stop() {
	close(p.submit)
	p.workerg.Wait()
}

type action struct {
	name string
	run  func()
}

func (a action) Run()         { a.run() }
func (a action) Name() string { return a.name }

// NewAction wraps a function as a WorkItem.
func NewAction(name string, run func()) WorkItem {
	return action{name: name, run: run}
}

// Ordered runs n jobs on the pool and returns only after all of them
// completed. Jobs learn their own index, so callers collect results into
// an indexed slice and keep submission order regardless of completion
// order.
func Ordered(p *Pool, n int, name string, job func(i int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		p.Submit(NewAction(name, func() {
			defer wg.Done()
			job(i)
		}))
	}
	wg.Wait()
}
