// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/admit/ring"
)

func TestSPSCBasic(t *testing.T) {
	q := ring.NewSPSC[int](3)

	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	for i := range 4 {
		v := i + 100
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	v := 999
	if err := q.Enqueue(&v); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Enqueue on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i+100)
		}
	}

	if _, err := q.Dequeue(); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
}

func TestSPSCApproxLen(t *testing.T) {
	q := ring.NewSPSC[int](4)
	if n := q.ApproxLen(); n != 0 {
		t.Fatalf("ApproxLen on empty: got %d, want 0", n)
	}
	for i := range 3 {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if n := q.ApproxLen(); n != 3 {
		t.Fatalf("ApproxLen after 3 enqueues: got %d, want 3", n)
	}
	if _, err := q.Dequeue(); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if n := q.ApproxLen(); n != 2 {
		t.Fatalf("ApproxLen after dequeue: got %d, want 2", n)
	}
}

func TestMPSCMultipleProducers(t *testing.T) {
	q := ring.NewMPSC[int](64)

	const producers = 4
	const perProducer = 10
	done := make(chan struct{})
	for p := range producers {
		go func(p int) {
			for i := range perProducer {
				v := p*perProducer + i
				for q.Enqueue(&v) != nil {
				}
			}
			done <- struct{}{}
		}(p)
	}
	for range producers {
		<-done
	}

	seen := make(map[int]bool)
	for range producers * perProducer {
		for {
			v, err := q.Dequeue()
			if err == nil {
				seen[v] = true
				break
			}
		}
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("got %d distinct values, want %d", len(seen), producers*perProducer)
	}
}

func TestMPMCCapRounding(t *testing.T) {
	q := ring.NewMPMC[int](3)
	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}
}

func TestPhaseDepthRounding(t *testing.T) {
	if got := ring.PhaseDepth(6, 10); got != 64 {
		t.Fatalf("PhaseDepth(6, 10): got %d, want 64", got)
	}
	if got := ring.PhaseDepth(0, 0); got != 2 {
		t.Fatalf("PhaseDepth(0, 0): got %d, want 2", got)
	}
}

func TestMPMCApproxLen(t *testing.T) {
	q := ring.NewMPMC[int](4)
	v := 7
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if n := q.ApproxLen(); n != 1 {
		t.Fatalf("ApproxLen after enqueue: got %d, want 1", n)
	}
	if _, err := q.Dequeue(); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if n := q.ApproxLen(); n != 0 {
		t.Fatalf("ApproxLen after dequeue: got %d, want 0", n)
	}
}

func TestDrainerSkipsThreshold(t *testing.T) {
	q := ring.NewMPMC[int](4)
	v := 1
	_ = q.Enqueue(&v)
	q.Drain()
	if _, err := q.Dequeue(); err != nil {
		t.Fatalf("Dequeue after Drain: %v", err)
	}
}
