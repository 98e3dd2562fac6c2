// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/admit/ring"
)

// urgentEntry is one freshly-signaled (src,dst) demand transition, queued
// for the core to fold into a bin at the next opportunity (§4.3 step 1).
type urgentEntry struct {
	src    NodeId
	dst    NodeId
	metric uint32
	epoch  uint32
}

// Status is the shared, concurrency-safe handle produced by
// NewStatus (§6's create_admissible_status): the backlog table, the
// urgent-signal ring, the head-token baton, and the admitted-output ring
// that a single admission core drains on each call to GetAdmissibleTraffic.
//
// Status is safe for concurrent use by many producer goroutines calling
// AddBacklog/ResetSender and exactly one core goroutine calling
// GetAdmissibleTraffic.
type Status struct {
	cfg     Config
	variant Variant

	backlog *backlogTable
	urgent  *ring.MPSC[urgentEntry]

	// head is the head-token baton (§4.3 step 1, §6): a two-slot SPSC ring
	// holding the single token that NewStatus enqueues. Nothing in this
	// package acquires or releases the token, and the field is unexported,
	// so it does not serialize calls to GetAdmissibleTraffic. The urgent
	// ring carries no sentinel entry; its drain stops when Dequeue reports
	// empty.
	head *ring.SPSC[struct{}]

	admittedOut *ring.MPSC[*AdmittedRecord]
	admittedIn  *admittedPool

	bins *binPool

	metrics *Metrics

	currentTimeslot atomix.Uint64
}

// WithMetrics attaches a counter set created by [NewMetrics]; it returns s
// so it can be chained onto NewStatus. Passing nil detaches instrumentation.
func (s *Status) WithMetrics(m *Metrics) *Status {
	s.metrics = m
	return s
}

// NewStatus allocates a Status for the given variant and sizing. cfg is
// validated; an invalid cfg panics, matching the teacher's convention of
// treating malformed construction-time sizing as a programmer error
// rather than a recoverable one.
func NewStatus(variant Variant, cfg Config) *Status {
	if err := cfg.Validate(); err != nil {
		fatalf("admit: %v", err)
	}

	s := &Status{
		cfg:         cfg,
		variant:     variant,
		backlog:     newBacklogTable(cfg),
		urgent:      ring.NewMPSC[urgentEntry](ring.PhaseDepth(cfg.B(), cfg.N())),
		head:        ring.NewSPSC[struct{}](ring.PhaseDepth(1, 1)),
		admittedOut: ring.NewMPSC[*AdmittedRecord](ring.PhaseDepth(cfg.B(), 1)),
		admittedIn:  newAdmittedPool(cfg.B()*2, cfg.N()),
		bins:        newBinPool(cfg.NumBins(), cfg.LargeBinSize()),
	}
	var tok struct{}
	if err := s.head.Enqueue(&tok); err != nil {
		fatalf("admit: head token baton failed to initialize")
	}
	return s
}

// NewCoreState draws one worker's resident bins and admitted-record
// handles from this Status's shared pools (§6's alloc_core_init, adapted
// to take the owning Status rather than raw ring handles since the pools
// already live there). Callers typically create one AdmissionCoreState
// per worker goroutine and reuse it across every batch that worker drives.
func (s *Status) NewCoreState() *AdmissionCoreState {
	return AllocCoreInit(s.variant, s.cfg, s.bins, s.admittedIn)
}

// AddBacklog records extra additional packets of demand from src to dst
// (§4.2, §6's add_backlog). On a 0→nonzero transition for this flow it
// also signals the urgent ring so the core picks it up promptly; if the
// urgent ring is momentarily full the demand is still recorded and the
// flow remains discoverable via the end-of-batch reconciliation pass
// (§4.3 step 2a), so ErrBackpressure is safe for callers to ignore beyond
// logging or backoff.
func (s *Status) AddBacklog(src, dst NodeId, extra uint32) error {
	if extra == 0 {
		return nil
	}
	ts := s.currentTimeslot.LoadAcquire()
	signal, metric, overRequest := s.backlog.addBacklog(src, dst, extra, ts, s.variant)
	var err error
	if overRequest {
		s.metrics.incOverRequest()
		err = ErrOverRequest
	}
	if !signal {
		return err
	}

	e := urgentEntry{src: src, dst: dst, metric: metric, epoch: s.backlog.currentEpoch(src)}
	if enqErr := s.urgent.Enqueue(&e); enqErr != nil {
		s.metrics.incBackpressure()
		if err == nil {
			err = ErrBackpressure
		}
	}
	s.metrics.setUrgentRingDepth(s.urgent.ApproxLen())
	return err
}

// reportRingDepths samples the bin pool's and admitted-out ring's
// occupancy into the attached Metrics. GetAdmissibleTraffic calls this
// once per batch rather than per timeslot: the gauges only need to track
// steady-state drift, not every individual admit/defer.
func (s *Status) reportRingDepths() {
	s.metrics.setBinPoolDepth(s.bins.approxLen())
	s.metrics.setAdmittedOutDepth(s.admittedOut.ApproxLen())
}

// ResetSender clears all outstanding backlog from src and bumps its reset
// epoch (§4.6, §6's reset_sender), so any entries still sitting in bins
// under the old epoch are dropped rather than admitted.
func (s *Status) ResetSender(src NodeId) {
	s.backlog.resetSender(src)
}

// DequeueAdmittedTraffic returns the next completed timeslot's admitted
// edges, blocking-free (§6): ErrWouldBlock means the core has not yet
// finished producing the next timeslot's record.
func (s *Status) DequeueAdmittedTraffic() (*AdmittedRecord, error) {
	return s.admittedOut.Dequeue()
}

// ReleaseAdmittedTraffic returns a record drawn via DequeueAdmittedTraffic
// to the pool the core draws from, once the consumer is done reading it.
// Records behave like bins (§9): a fixed arena circulated by handle, never
// freed in steady state.
func (s *Status) ReleaseAdmittedTraffic(rec *AdmittedRecord) {
	s.admittedIn.release(rec)
}
