// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

// bitset is a fixed-size bit array over NodeId space, one per phase.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) test(i int) bool   { return b[i/64]&(1<<uint(i%64)) != 0 }
func (b bitset) set(i int)         { b[i/64] |= 1 << uint(i%64) }
func (b bitset) clearAll() {
	for i := range b {
		b[i] = 0
	}
}

// AdmissionCoreState is one worker's resident working set (§3's
// AdmissionCoreState, §5 "each owning its own core state"). Bins are
// acquired once from the pool at AllocCoreInit and held for the life of
// the worker rather than round-tripped through the pool every batch: the
// worker never stops "currently holding" them, which satisfies §9's
// ownership invariant ("no bin is freed during steady state") while
// avoiding a pool round-trip on every single batch.
type AdmissionCoreState struct {
	cfg     Config
	variant Variant
	pool    *binPool
	out     *admittedPool

	// bins[p] holds the entries due to be attempted at phase p. It is a
	// resident, rotating structure, not reset between batches: an entry
	// deferred or admitted-with-remaining-demand at phase p is pushed
	// straight into bins[(p+1) mod B] (§4.3 step 2b/2c/2d, "the bin for
	// timeslot (t+1) mod B"), where it is picked up the moment this or a
	// later call to GetAdmissibleTraffic reaches that phase — immediately,
	// within the same batch, for every phase but the last.
	bins []*Bin

	srcUsed      []bitset
	dstUsed      []bitset
	srcRackCount [][]uint16
	dstRackCount [][]uint16
	oobCount     []uint16

	nextBatchStart uint64
}

// AllocCoreInit draws the worker's resident bins from pool and its
// admitted-record handles from out, and prepares the per-phase bitmaps
// and rack counters (§6's alloc_core_init).
func AllocCoreInit(variant Variant, cfg Config, pool *binPool, out *admittedPool) *AdmissionCoreState {
	b := cfg.B()
	c := &AdmissionCoreState{
		cfg:          cfg,
		variant:      variant,
		pool:         pool,
		out:          out,
		bins:         make([]*Bin, b),
		srcUsed:      make([]bitset, b),
		dstUsed:      make([]bitset, b),
		srcRackCount: make([][]uint16, b),
		dstRackCount: make([][]uint16, b),
		oobCount:     make([]uint16, b),
	}
	for p := range b {
		c.bins[p] = pool.acquire()
		c.srcUsed[p] = newBitset(cfg.N())
		c.dstUsed[p] = newBitset(cfg.N())
		c.srcRackCount[p] = make([]uint16, cfg.R())
		c.dstRackCount[p] = make([]uint16, cfg.R())
	}
	return c
}

// GetAdmissibleTraffic drains exactly B timeslots starting at
// firstTimeslot, the bin-cascade admission loop of §4.3, sealing one
// AdmittedRecord per timeslot onto status's admitted-out ring.
//
// workerIndex and nWorkers identify this call among a cooperating pool of
// callers (§5, §6): each AdmissionCoreState is privately owned by one
// worker goroutine, and hand-off of the *next* batch to a different
// worker happens through status's shared rings (urgent, admitted-out),
// not by exchanging this worker's resident bins — so the two parameters
// are accepted for API parity with §6 and are otherwise unused: they do
// not change how this call processes its own batch.
func (c *AdmissionCoreState) GetAdmissibleTraffic(status *Status, firstTimeslot uint64, workerIndex, nWorkers int) error {
	_ = workerIndex
	_ = nWorkers
	b := c.cfg.B()

	for p := 0; p < b; p++ {
		c.srcUsed[p].clearAll()
		c.dstUsed[p].clearAll()
		for r := range c.srcRackCount[p] {
			c.srcRackCount[p][r] = 0
			c.dstRackCount[p][r] = 0
		}
		c.oobCount[p] = 0
	}

	for t := 0; t < b; t++ {
		absT := firstTimeslot + uint64(t)
		status.currentTimeslot.StoreRelease(absT)

		bin := c.bins[t]
		c.drainUrgent(status, bin)

		rec := c.out.acquire()
		rec.Timeslot = absT

		admit := func(e demandEntry) bool {
			if !status.backlog.isLive(e.src, e.dst, e.epoch) {
				status.metrics.incDropped()
				return true // drop: stale epoch or fully drained
			}

			oob := c.cfg.IsOutOfBoundary(e.dst)
			var dstRack int
			if !oob {
				dstRack = c.cfg.Rack(e.dst)
			}
			srcRack := c.cfg.Rack(e.src)

			if c.srcUsed[t].test(int(e.src)) {
				return c.defer_(status, t, e)
			}
			if !oob && c.dstUsed[t].test(int(e.dst)) {
				return c.defer_(status, t, e)
			}
			if c.cfg.RackCapacity > 0 {
				if c.srcRackCount[t][srcRack] >= c.cfg.RackCapacity {
					return c.defer_(status, t, e)
				}
				if !oob && c.dstRackCount[t][dstRack] >= c.cfg.RackCapacity {
					return c.defer_(status, t, e)
				}
			}
			if oob && c.cfg.OutOfBoundaryCapacity > 0 && c.oobCount[t] >= c.cfg.OutOfBoundaryCapacity {
				return c.defer_(status, t, e)
			}

			status.metrics.incAdmitted()
			rec.Edges = append(rec.Edges, Edge{Src: e.src, Dst: e.dst})
			c.srcUsed[t].set(int(e.src))
			if oob {
				c.oobCount[t]++
			} else {
				c.dstUsed[t].set(int(e.dst))
			}
			if c.cfg.RackCapacity > 0 {
				c.srcRackCount[t][srcRack]++
				if !oob {
					c.dstRackCount[t][dstRack]++
				}
			}

			remaining, stillInBin := status.backlog.consumeOne(e.src, e.dst)
			if stillInBin {
				metric := e.metric
				if c.variant == SRJF {
					metric = remaining
					status.backlog.updateMetric(e.src, e.dst, metric)
				}
				next := (t + 1) % c.cfg.B()
				c.bins[next].push(demandEntry{src: e.src, dst: e.dst, metric: metric, epoch: e.epoch})
			}
			return true
		}

		if c.variant == SRJF {
			bin.sortedIter(admit)
		} else {
			bin.iter(admit)
		}

		if err := status.admittedOut.Enqueue(&rec); err != nil {
			fatalf("admit: admitted-out ring overflowed, sizing contract violated")
		}
	}

	c.nextBatchStart = firstTimeslot + uint64(b)
	status.reportRingDepths()
	return nil
}

// defer_ moves entry e out of the bin for phase t into the bin for phase
// (t+1) mod B, same priority (§4.3 step 2b/2c). It always returns true:
// the caller's iterator contract is "true removes the current entry",
// and a deferred entry is always removed from its current bin.
func (c *AdmissionCoreState) defer_(status *Status, t int, e demandEntry) bool {
	status.metrics.incDeferred()
	next := (t + 1) % c.cfg.B()
	c.bins[next].push(e)
	return true
}

// drainUrgent non-blockingly moves every currently-available urgent
// signal into bin (§4.3 step 1). The loop runs until the ring reports
// empty; the head-token baton in status plays no part in it.
func (c *AdmissionCoreState) drainUrgent(status *Status, bin *Bin) {
	for {
		e, err := status.urgent.Dequeue()
		if err != nil {
			return
		}
		bin.push(demandEntry{src: e.src, dst: e.dst, metric: e.metric, epoch: e.epoch})
	}
}
