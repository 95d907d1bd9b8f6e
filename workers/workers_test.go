package workers

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsEverything(t *testing.T) {
	p := New(3)
	var count int64
	for i := 0; i < 20; i++ {
		p.Submit(NewAction("count", func() {
			atomic.AddInt64(&count, 1)
		}))
	}
	p.Stop()
	if count != 20 {
		t.Errorf("expected 20 runs, got %d", count)
	}
}

func TestOrderedKeepsSubmissionOrder(t *testing.T) {
	p := New(4)
	defer p.Stop()

	results := make([]int, 8)
	Ordered(p, len(results), "fetch", func(i int) {
		// later submissions finish first
		time.Sleep(time.Duration(len(results)-i) * time.Millisecond)
		results[i] = i + 1
	})
	for i, v := range results {
		if v != i+1 {
			t.Fatalf("slot %d holds %d", i, v)
		}
	}
}

func TestSingleWorkerIsSequential(t *testing.T) {
	p := New(0) // clamps to one worker
	defer p.Stop()

	var order []int
	Ordered(p, 5, "seq", func(i int) {
		order = append(order, i)
	})
	for i, v := range order {
		if v != i {
			t.Fatalf("expected strict order, got %v", order)
		}
	}
}
