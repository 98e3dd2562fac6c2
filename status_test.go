// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

import "testing"

func smallCfg() Config {
	return Config{NodesShift: 3, NodesPerRackShift: 3, BatchShift: 3}
}

// drainBatch drives one batch synchronously and returns its B records in
// timeslot order, draining status's admitted-out ring as it goes so the
// ring never needs more than B slots of headroom.
func drainBatch(t *testing.T, status *Status, core *AdmissionCoreState, first uint64) []*AdmittedRecord {
	t.Helper()
	if err := core.GetAdmissibleTraffic(status, first, 0, 1); err != nil {
		t.Fatalf("GetAdmissibleTraffic: %v", err)
	}
	b := status.cfg.B()
	out := make([]*AdmittedRecord, b)
	for i := 0; i < b; i++ {
		rec, err := status.DequeueAdmittedTraffic()
		if err != nil {
			t.Fatalf("DequeueAdmittedTraffic(%d): %v", i, err)
		}
		out[i] = rec
	}
	return out
}

// S1: single flow admits one packet per timeslot until backlog drains.
func TestScenarioSingleFlow(t *testing.T) {
	cfg := smallCfg()
	status := NewStatus(FIFO, cfg)
	core := status.NewCoreState()

	if err := status.AddBacklog(0, 1, 5); err != nil {
		t.Fatalf("AddBacklog: %v", err)
	}

	recs := drainBatch(t, status, core, 0)
	for i := 0; i < 5; i++ {
		if len(recs[i].Edges) != 1 || recs[i].Edges[0] != (Edge{Src: 0, Dst: 1}) {
			t.Fatalf("t=%d: got %v, want single edge (0,1)", i, recs[i].Edges)
		}
	}
	for i := 5; i < cfg.B(); i++ {
		if len(recs[i].Edges) != 0 {
			t.Fatalf("t=%d: got %v, want empty", i, recs[i].Edges)
		}
	}
	if d := status.backlog.demandOf(0, 1); d != 0 {
		t.Fatalf("residual demand: got %d, want 0", d)
	}
}

// S2: two flows sharing src 0 are serialized one per timeslot, distinct
// dsts, and variant-specific order is honored.
func TestScenarioTwoFlowsSharedSrc(t *testing.T) {
	for _, variant := range []Variant{FIFO, SRJF} {
		cfg := smallCfg()
		status := NewStatus(variant, cfg)
		core := status.NewCoreState()

		if err := status.AddBacklog(0, 1, 2); err != nil {
			t.Fatalf("AddBacklog(0,1): %v", err)
		}
		if err := status.AddBacklog(0, 4, 1); err != nil {
			t.Fatalf("AddBacklog(0,4): %v", err)
		}

		recs := drainBatch(t, status, core, 0)
		var total int
		for _, r := range recs {
			if len(r.Edges) > 1 {
				t.Fatalf("record has %d edges, want <= 1", len(r.Edges))
			}
			total += len(r.Edges)
			seenSrc := map[NodeId]bool{}
			for _, e := range r.Edges {
				if seenSrc[e.Src] {
					t.Fatalf("src %d admitted twice in same record set check failed", e.Src)
				}
				seenSrc[e.Src] = true
			}
		}
		if total != 3 {
			t.Fatalf("%s: got %d total admitted edges, want 3", variant, total)
		}

		switch variant {
		case FIFO:
			if recs[0].Edges[0].Dst != 1 || recs[1].Edges[0].Dst != 1 || recs[2].Edges[0].Dst != 4 {
				t.Fatalf("FIFO order: t0=%v t1=%v t2=%v", recs[0].Edges, recs[1].Edges, recs[2].Edges)
			}
		case SRJF:
			if recs[0].Edges[0].Dst != 4 || recs[1].Edges[0].Dst != 1 || recs[2].Edges[0].Dst != 1 {
				t.Fatalf("SRJF order: t0=%v t1=%v t2=%v", recs[0].Edges, recs[1].Edges, recs[2].Edges)
			}
		}
	}
}

// S3: FIFO metric is pinned to first-request timeslot regardless of the
// order later demand additions arrive in.
func TestScenarioFIFOPreservesRequestOrder(t *testing.T) {
	cfg := smallCfg()
	status := NewStatus(FIFO, cfg)
	core := status.NewCoreState()

	if err := status.AddBacklog(3, 5, 1); err != nil {
		t.Fatalf("AddBacklog(3,5): %v", err)
	}
	if err := status.AddBacklog(4, 5, 1); err != nil {
		t.Fatalf("AddBacklog(4,5): %v", err)
	}
	recs := drainBatch(t, status, core, 0)
	if len(recs[0].Edges) != 1 || recs[0].Edges[0] != (Edge{Src: 3, Dst: 5}) {
		t.Fatalf("batch1 t0: got %v", recs[0].Edges)
	}
	if len(recs[1].Edges) != 1 || recs[1].Edges[0] != (Edge{Src: 4, Dst: 5}) {
		t.Fatalf("batch1 t1: got %v", recs[1].Edges)
	}

	if err := status.AddBacklog(4, 5, 2); err != nil {
		t.Fatalf("AddBacklog(4,5) 2nd: %v", err)
	}
	if err := status.AddBacklog(3, 5, 2); err != nil {
		t.Fatalf("AddBacklog(3,5) 2nd: %v", err)
	}
	recs2 := drainBatch(t, status, core, uint64(cfg.B()))
	if len(recs2[0].Edges) != 1 || recs2[0].Edges[0] != (Edge{Src: 3, Dst: 5}) {
		t.Fatalf("batch2 t0: got %v", recs2[0].Edges)
	}
	if len(recs2[1].Edges) != 1 || recs2[1].Edges[0] != (Edge{Src: 4, Dst: 5}) {
		t.Fatalf("batch2 t1: got %v", recs2[1].Edges)
	}
}

// S4: rack oversubscription caps admitted edges per rack per timeslot.
func TestScenarioRackCapacity(t *testing.T) {
	cfg := Config{NodesShift: 7, NodesPerRackShift: 5, BatchShift: 3, RackCapacity: 2}
	status := NewStatus(FIFO, cfg)
	core := status.NewCoreState()

	reqs := []Edge{{0, 32}, {1, 64}, {2, 96}, {33, 65}, {97, 66}}
	for _, e := range reqs {
		if err := status.AddBacklog(e.Src, e.Dst, 1); err != nil {
			t.Fatalf("AddBacklog%v: %v", e, err)
		}
	}

	recs := drainBatch(t, status, core, 0)
	first := recs[0]
	srcRackCount := map[int]int{}
	dstRackCount := map[int]int{}
	for _, e := range first.Edges {
		srcRackCount[cfg.Rack(e.Src)]++
		dstRackCount[cfg.Rack(e.Dst)]++
	}
	if srcRackCount[0] > 2 {
		t.Fatalf("rack 0 as src: got %d edges, want <= 2", srcRackCount[0])
	}
	if dstRackCount[2] > 2 {
		t.Fatalf("rack 2 as dst: got %d edges, want <= 2", dstRackCount[2])
	}
}

// S5: after reset_sender returns, at most one more edge for (src,*) can
// still be admitted.
func TestScenarioReset(t *testing.T) {
	cfg := smallCfg()
	status := NewStatus(FIFO, cfg)
	core := status.NewCoreState()

	b := uint32(cfg.B())
	if err := status.AddBacklog(0, 10, b); err != nil {
		t.Fatalf("AddBacklog(0,10): %v", err)
	}
	if err := status.AddBacklog(1, 10, b); err != nil {
		t.Fatalf("AddBacklog(1,10): %v", err)
	}
	if err := status.AddBacklog(0, 20, b); err != nil {
		t.Fatalf("AddBacklog(0,20): %v", err)
	}
	_ = drainBatch(t, status, core, 0)

	status.ResetSender(0)

	recs := drainBatch(t, status, core, uint64(cfg.B()))
	var residual int
	for _, r := range recs {
		for _, e := range r.Edges {
			if e.Src == 0 {
				residual++
			}
		}
	}
	if residual > 1 {
		t.Fatalf("residual edges for src 0 after reset: got %d, want <= 1", residual)
	}
}

// S6: out-of-boundary capacity caps admissions toward the sentinel dst.
func TestScenarioOutOfBoundaryCapacity(t *testing.T) {
	cfg := Config{NodesShift: 3, NodesPerRackShift: 3, BatchShift: 3, OutOfBoundaryCapacity: 2}
	status := NewStatus(FIFO, cfg)
	core := status.NewCoreState()

	for src := NodeId(0); src < 6; src++ {
		if err := status.AddBacklog(src, OutOfBoundaryNodeID, 1); err != nil {
			t.Fatalf("AddBacklog(%d,OOB): %v", src, err)
		}
	}

	recs := drainBatch(t, status, core, 0)
	var total int
	for i, r := range recs {
		count := 0
		for _, e := range r.Edges {
			if e.Dst == OutOfBoundaryNodeID {
				count++
			}
		}
		if i < 3 {
			if count != 2 {
				t.Fatalf("t=%d: got %d out-of-boundary edges, want 2", i, count)
			}
		} else if count != 0 {
			t.Fatalf("t=%d: got %d out-of-boundary edges, want 0", i, count)
		}
		total += count
	}
	if total != 6 {
		t.Fatalf("total out-of-boundary edges: got %d, want 6", total)
	}
}
