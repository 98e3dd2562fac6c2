// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

import (
	"math"

	"code.hybscloud.com/atomix"
)

// backlogEntry is the per-(src,dst) demand counter plus the "already
// represented in some bin" bit and the last-assigned metric (§3). It
// replaces the source's hash-map bookkeeping with a dense table entry
// (§9, "Replacing dynamic collections"): at N ≤ 1024 the whole table is a
// few MiB and this wins on cache locality over hashing (src,dst) pairs.
type backlogEntry struct {
	demand atomix.Uint64 // u32 range; widened so it saturates cleanly at MaxUint32
	inBin  atomix.Bool
	metric atomix.Uint64 // u32 range
	epoch  atomix.Uint64 // u32 range, snapshot of reset_epoch[src] at signal time
	warned atomix.Bool   // over-request already reported once (§7)
}

// backlogTable is the dense N×N demand table plus per-source reset
// epochs (§4.2, §4.6). It is multi-writer: producer goroutines call
// AddBacklog concurrently with the core's consumeOne, synchronized via
// compare-and-swap on demand so exactly one producer wins the "signal"
// obligation: the one whose update moves demand off zero.
type backlogTable struct {
	cfg     Config
	entries []backlogEntry // row-major [src*N + dst], dst==N reserved for OutOfBoundaryNodeID
	epochs  []atomix.Uint64
}

func newBacklogTable(cfg Config) *backlogTable {
	n := cfg.N()
	return &backlogTable{
		cfg:     cfg,
		entries: make([]backlogEntry, n*(n+1)),
		epochs:  make([]atomix.Uint64, n),
	}
}

// index maps (src,dst) to its backlogEntry slot; dst == OutOfBoundaryNodeID
// is folded onto the synthetic column N.
func (t *backlogTable) index(src, dst NodeId) int {
	n := t.cfg.N()
	col := n
	if !t.cfg.IsOutOfBoundary(dst) {
		col = int(dst)
	}
	return int(src)*(n+1) + col
}

// addBacklog atomically adds extra to entry (src,dst). Returns signal=true
// exactly once per 0→nonzero transition; the caller (AddBacklog, below)
// must then push (src,dst,metricInit) onto the urgent ring.
func (t *backlogTable) addBacklog(src, dst NodeId, extra uint32, currentTimeslot uint64, variant Variant) (signal bool, metricInit uint32, overRequest bool) {
	e := &t.entries[t.index(src, dst)]

	for {
		cur := e.demand.LoadAcquire()
		next := cur + uint64(extra)
		saturated := false
		if next > math.MaxUint32 {
			next = math.MaxUint32
			saturated = true
		}
		if e.demand.CompareAndSwapAcqRel(cur, next) {
			overRequest = saturated && !e.warned.LoadAcquire()
			if overRequest {
				e.warned.StoreRelease(true)
			}
			signal = cur == 0 && next > 0
			break
		}
	}

	if signal {
		if variant == FIFO {
			metricInit = uint32(currentTimeslot)
		} else {
			metricInit = extra
		}
		e.metric.StoreRelease(uint64(metricInit))
		e.epoch.StoreRelease(t.epochs[src].LoadAcquire())
		e.inBin.StoreRelease(true)
	} else {
		metricInit = uint32(e.metric.LoadAcquire())
	}
	return signal, metricInit, overRequest
}

// consumeOne decrements demand by one packet admitted. If demand reaches
// zero, inBin is cleared and stillInBin is false: the flow fell out of
// every bin and will not be re-inserted (§4.3 step 2d).
func (t *backlogTable) consumeOne(src, dst NodeId) (remaining uint32, stillInBin bool) {
	e := &t.entries[t.index(src, dst)]
	for {
		cur := e.demand.LoadAcquire()
		if cur == 0 {
			return 0, false
		}
		next := cur - 1
		if e.demand.CompareAndSwapAcqRel(cur, next) {
			remaining = uint32(next)
			stillInBin = next > 0
			if !stillInBin {
				e.inBin.StoreRelease(false)
			}
			return remaining, stillInBin
		}
	}
}

// updateMetric overwrites the stored metric for a still-live entry, used
// by the SRJF variant when re-inserting with the new remaining-demand
// value (§4.3 step 2d). FIFO never calls this: its metric is fixed at
// the first request timeslot for the life of the backlog.
func (t *backlogTable) updateMetric(src, dst NodeId, metric uint32) {
	t.entries[t.index(src, dst)].metric.StoreRelease(uint64(metric))
}

// isLive reports whether (src,dst) is still represented by demand and
// was enqueued under the current reset epoch for src (§4.3 step 2a).
func (t *backlogTable) isLive(src, dst NodeId, enqueuedEpoch uint32) bool {
	e := &t.entries[t.index(src, dst)]
	if uint64(enqueuedEpoch) != t.epochs[src].LoadAcquire() {
		return false
	}
	if !e.inBin.LoadAcquire() {
		return false
	}
	return e.demand.LoadAcquire() > 0
}

// currentEpoch returns the live reset epoch for src, to stamp newly
// inserted or re-inserted entries.
func (t *backlogTable) currentEpoch(src NodeId) uint32 {
	return uint32(t.epochs[src].LoadAcquire())
}

// resetSender bumps reset_epoch[src] and clears all (src,*) backlog
// (§4.6). Entries already sitting in bins under the old epoch are not
// visited here; they are dropped lazily by isLive the next time the core
// reaches them (§4.3 step 2a), honoring the "at most one more packet"
// contract without requiring a synchronous sweep of every bin.
func (t *backlogTable) resetSender(src NodeId) {
	t.epochs[src].AddAcqRel(1)
	n := t.cfg.N()
	base := int(src) * (n + 1)
	for col := 0; col <= n; col++ {
		e := &t.entries[base+col]
		e.demand.StoreRelease(0)
		e.inBin.StoreRelease(false)
		e.warned.StoreRelease(false)
	}
}

// demandOf returns the current outstanding demand for (src,dst), used by
// tests and the conservation property check (§8 property 3).
func (t *backlogTable) demandOf(src, dst NodeId) uint32 {
	return uint32(t.entries[t.index(src, dst)].demand.LoadAcquire())
}
