// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides bounded FIFO queue implementations used to pass
// work between the admission core's pipeline stages: the bin pool, the
// urgent-request ring, and the admitted-traffic output ring.
//
// Three producer/consumer shapes are offered, matched to the three roles a
// ring plays in the admission pipeline:
//
//   - SPSC: Single-Producer Single-Consumer, a Lamport ring buffer. Used
//     for the admission status's head-token baton, which holds a single
//     token.
//   - MPSC: Multi-Producer Single-Consumer. Used for the urgent ring
//     (many ingress goroutines call add_backlog concurrently, one core
//     drains it) and the admitted-out ring (one or more admission-core
//     workers seal and enqueue records, one downstream consumer reads them).
//   - MPMC: Multi-Producer Multi-Consumer. Used for the bin pool and the
//     admitted-record pool, since multiple admission-core workers both
//     return handles to, and draw handles from, the same shared pool.
//
// # Quick Start
//
//	q := ring.NewSPSC[Event](1024)
//	q := ring.NewMPSC[*Request](4096)
//	q := ring.NewMPMC[*Bin](1024)
//
// A call site sizing a ring off a batch's own phase count, rather than an
// arbitrary capacity guess, can use [PhaseDepth] instead of computing the
// power-of-two rounding itself:
//
//	q := ring.NewMPSC[*Request](ring.PhaseDepth(cfg.B(), cfg.N()))
//
// # Basic Usage
//
//	q := ring.NewMPMC[int](1024)
//
//	value := 42
//	if err := q.Enqueue(&value); err != nil {
//	    // queue full
//	}
//
//	elem, err := q.Dequeue()
//	if ring.IsWouldBlock(err) {
//	    // queue empty — retry later
//	}
//
// # Capacity
//
// Capacity rounds up to the next power of 2. Minimum capacity is 2.
// Panics if capacity < 2.
//
// # Occupancy
//
// Every queue type additionally implements [Depther]: ApproxLen returns a
// racy occupancy snapshot meant for gauge reporting, not control flow. An
// accurate count in a lock-free algorithm requires cross-core
// synchronization this package otherwise avoids on the hot path.
//
// # Error Handling
//
// Queues return [ErrWouldBlock] when operations cannot proceed. This error
// is sourced from [code.hybscloud.com/iox] for ecosystem consistency.
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !ring.IsWouldBlock(err) {
//	        return err
//	    }
//	    backoff.Wait()
//	}
//
// # Graceful Shutdown
//
// MPMC includes a threshold mechanism to prevent livelock; this may cause
// its Dequeue to return ErrWouldBlock even when items remain, while waiting
// for producer activity to reset the threshold. MPSC has no threshold. Use
// the [Drainer] interface once producers are known to be finished:
//
//	if d, ok := q.(ring.Drainer); ok {
//	    d.Drain()
//	}
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives but cannot
// observe happens-before relationships established purely through atomic
// acquire-release orderings. [RaceEnabled] reports at compile time whether
// the race detector is active.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions.
package ring
