// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package admit implements the admission core of a centralized datacenter
// fabric arbiter: it turns a stream of per-(src,dst) demand increments
// into a stream of per-timeslot admitted-traffic records such that every
// record's sources are pairwise distinct, its destinations are pairwise
// distinct, and optional per-rack capacity limits hold.
//
// The pipeline, leaf to root: a fixed pool of [Bin] handles circulated
// through the lock-free rings in the ring subpackage; a dense backlog
// table tracking outstanding demand per flow; a [Status] that owns both
// plus the urgent-signal and admitted-output rings; and an
// [AdmissionCoreState] per worker goroutine that drives the bin-cascade
// matching loop B timeslots at a time.
//
// A typical producer/consumer wiring:
//
//	status := admit.NewStatus(admit.FIFO, cfg)
//	core := status.NewCoreState()
//
//	go func() {
//		for t := uint64(0); ; t += uint64(cfg.B()) {
//			if err := core.GetAdmissibleTraffic(status, t, 0, 1); err != nil {
//				panic(err)
//			}
//		}
//	}()
//
//	_ = status.AddBacklog(src, dst, extra)
//	rec, err := status.DequeueAdmittedTraffic()
package admit
