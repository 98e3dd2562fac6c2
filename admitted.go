// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

import "code.hybscloud.com/admit/ring"

// AdmittedRecord is one timeslot's worth of admitted traffic, the
// wire-visible unit described in §3: a size followed by up to N edges.
// Src/Dst are carried as NodeId (u32 in memory) though the wire encoding
// in §6 narrows them to u16; narrowing happens at the transport boundary,
// outside this package's scope.
type AdmittedRecord struct {
	Timeslot uint64
	Edges    []Edge
}

// reset truncates Edges to length 0 without releasing its backing array,
// so a record drawn from the pool can be refilled without allocating.
func (r *AdmittedRecord) reset() {
	r.Timeslot = 0
	r.Edges = r.Edges[:0]
}

// admittedPool recycles *AdmittedRecord handles the same way binPool
// recycles *Bin handles (§9), sized to the batch depth so the core never
// blocks on a record while downstream is still draining the previous batch.
type admittedPool struct {
	q *ring.MPMC[*AdmittedRecord]
}

// newAdmittedPool sizes its ring via [ring.PhaseDepth], matching
// newBinPool's idiom: depth is always a Config-derived quantity (a
// multiple of the batch depth B), not an arbitrary capacity guess.
func newAdmittedPool(depth, maxEdgesPerSlot int) *admittedPool {
	q := ring.NewMPMC[*AdmittedRecord](ring.PhaseDepth(depth, 1))
	p := &admittedPool{q: q}
	for range depth {
		v := &AdmittedRecord{Edges: make([]Edge, 0, maxEdgesPerSlot)}
		if err := q.Enqueue(&v); err != nil {
			fatalf("admit: admitted-record pool initialization overflowed its own ring")
		}
	}
	return p
}

func (p *admittedPool) acquire() *AdmittedRecord {
	v, err := p.q.Dequeue()
	if err != nil {
		fatalf("admit: admitted-record pool exhausted, records have leaked")
	}
	v.reset()
	return v
}

func (p *admittedPool) release(r *AdmittedRecord) {
	r.reset()
	if err := p.q.Enqueue(&r); err != nil {
		fatalf("admit: admitted-record pool ring overflowed on release, sizing contract violated")
	}
}
