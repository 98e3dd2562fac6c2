// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

import "code.hybscloud.com/admit/ring"

// demandEntry is one (src, dst, metric) record held by a Bin. metric is
// the FIFO first-request timeslot or the SRJF remaining-demand count,
// depending on the Status's Variant.
type demandEntry struct {
	src    NodeId
	dst    NodeId
	metric uint32
	epoch  uint32 // reset_epoch[src] observed when this entry was (re)inserted
}

// binClass distinguishes the two size classes named in §4.1.
type binClass int

const (
	smallBin binClass = iota
	largeBin
)

// Bin is an append-only ordered multiset of demand entries, the unit of
// work that flows through the admission pipeline. It is never freed once
// allocated: its lifetime is implicit in whichever ring currently holds
// its handle (§9, "Replacing object graphs with arena + indices").
type Bin struct {
	class   binClass
	entries []demandEntry
	count   int
}

func newBin(class binClass, capacity int) *Bin {
	return &Bin{class: class, entries: make([]demandEntry, capacity)}
}

// IsFull reports whether the bin has reached its fixed capacity.
func (b *Bin) IsFull() bool { return b.count == len(b.entries) }

// push appends an entry. Pushing into a full bin is a sizing-contract
// violation (§7, "bin overflow") and is fatal rather than returning an
// error: capacities are sized so this never legitimately happens.
func (b *Bin) push(e demandEntry) {
	if b.IsFull() {
		fatalf("admit: bin overflow (class=%d cap=%d)", b.class, len(b.entries))
	}
	b.entries[b.count] = e
	b.count++
}

// clear empties the bin in place so it can be returned to the pool.
func (b *Bin) clear() {
	for i := range b.entries[:b.count] {
		b.entries[i] = demandEntry{}
	}
	b.count = 0
}

// iter calls f for each live entry in insertion order, used by the FIFO
// variant (see sortedIter for SRJF). f may request removal of the current
// entry by returning remove=true; the entries that remain are compacted in
// place and keep their relative order. Entries pushed by f while iterating
// are not visited in this pass and are kept after the survivors.
func (b *Bin) iter(f func(e demandEntry) (remove bool)) {
	n := b.count
	w := 0
	for i := 0; i < n; i++ {
		e := b.entries[i]
		if !f(e) {
			b.entries[w] = e
			w++
		}
	}
	w += copy(b.entries[w:], b.entries[n:b.count])
	for i := w; i < b.count; i++ {
		b.entries[i] = demandEntry{}
	}
	b.count = w
}

// sortedIter visits entries in ascending metric order, used by the SRJF
// variant (§4.3 step 3: "the entry with the smallest metric ... is
// considered first"). The bin is small enough per timeslot that a simple
// insertion sort on read is cheaper than maintaining sortedness on every
// push; it also lets drop/admit/defer mutate the bin while iterating.
func (b *Bin) sortedIter(f func(e demandEntry) (remove bool)) {
	order := make([]int, b.count)
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && b.entries[order[j-1]].metric > b.entries[order[j]].metric {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}

	removed := make(map[int]bool, b.count)
	for _, idx := range order {
		if f(b.entries[idx]) {
			removed[idx] = true
		}
	}
	if len(removed) == 0 {
		return
	}
	kept := b.entries[:0:len(b.entries)]
	for i := 0; i < b.count; i++ {
		if !removed[i] {
			kept = append(kept, b.entries[i])
		}
	}
	for i := len(kept); i < b.count; i++ {
		b.entries[i] = demandEntry{}
	}
	b.count = len(kept)
}

// binPool is the fixed pool of Bin handles circulated via an MPMC ring
// (§9: bins as handles into a fixed pool). Multiple admission-core
// workers may concurrently return drained bins and draw fresh ones, so
// the pool ring is MPMC rather than SPSC.
type binPool struct {
	q *ring.MPMC[*Bin]
}

// newBinPool preallocates numBins large bins (the admission core's own
// working set) and enqueues their handles. The ring itself is sized via
// [ring.PhaseDepth] rather than a raw capacity number, since numBins is
// always a Config-derived phase-count*per-phase product (§4.1's N*B).
func newBinPool(numBins, largeBinSize int) *binPool {
	q := ring.NewMPMC[*Bin](ring.PhaseDepth(numBins, 1))
	p := &binPool{q: q}
	for range numBins {
		v := newBin(largeBin, largeBinSize)
		if err := q.Enqueue(&v); err != nil {
			fatalf("admit: bin pool initialization overflowed its own ring")
		}
	}
	return p
}

// acquire draws a bin from the pool. Pool exhaustion is fatal (§4.3,
// §7): it means bins have leaked, an invariant violation that a
// production process should not try to paper over.
func (p *binPool) acquire() *Bin {
	v, err := p.q.Dequeue()
	if err != nil {
		fatalf("admit: bin pool exhausted, bins have leaked")
	}
	v.clear()
	return v
}

// release clears and returns a bin to the pool.
func (p *binPool) release(b *Bin) {
	b.clear()
	if err := p.q.Enqueue(&b); err != nil {
		fatalf("admit: bin pool ring overflowed on release, sizing contract violated")
	}
}

// approxLen reports the pool ring's approximate occupancy, for gauge
// reporting (§7's operational metrics) rather than any sizing decision.
func (p *binPool) approxLen() int {
	return p.q.ApproxLen()
}
