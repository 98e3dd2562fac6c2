// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

import "fmt"

// NodeId identifies an end-host in the fabric. Valid values lie in
// [0, Config.N()). OutOfBoundaryNodeID is a reserved sentinel meaning
// "exit the scheduled region", not a rack member.
type NodeId uint32

// OutOfBoundaryNodeID is the reserved destination id for traffic leaving
// the scheduled region. It is never a valid src, and as a dst it is
// subject to OutOfBoundaryCapacity instead of per-rack accounting.
const OutOfBoundaryNodeID NodeId = ^NodeId(0)

// Variant selects the ordering discipline used to break ties within a bin.
type Variant int

const (
	// FIFO orders entries by first-request timeslot: oldest backlog wins.
	FIFO Variant = iota
	// SRJF orders entries by remaining demand: smallest backlog wins.
	SRJF
)

func (v Variant) String() string {
	switch v {
	case FIFO:
		return "FIFO"
	case SRJF:
		return "SRJF"
	default:
		return "Variant(?)"
	}
}

// Config carries the compile-time-ish sizing constants of §6. All shift
// values must make N, R, and B powers of two within the supported range.
type Config struct {
	// NodesShift gives N = 1<<NodesShift end-hosts.
	NodesShift uint
	// NodesPerRackShift gives NODES_PER_RACK = 1<<NodesPerRackShift; racks
	// hold that many end-hosts apiece, so R = N >> NodesPerRackShift.
	NodesPerRackShift uint
	// BatchShift gives B = 1<<BatchShift timeslots per batch.
	BatchShift uint
	// RackCapacity bounds admitted edges per timeslot whose src (or dst)
	// rack matches; 0 disables the check.
	RackCapacity uint16
	// OutOfBoundaryCapacity bounds admitted edges per timeslot destined to
	// OutOfBoundaryNodeID; 0 disables the check.
	OutOfBoundaryCapacity uint16
}

// N returns the number of end-hosts, 1<<NodesShift.
func (c Config) N() int { return 1 << c.NodesShift }

// NodesPerRack returns the number of end-hosts per rack.
func (c Config) NodesPerRack() int { return 1 << c.NodesPerRackShift }

// R returns the number of racks, N / NodesPerRack.
func (c Config) R() int { return c.N() >> c.NodesPerRackShift }

// B returns the batch size in timeslots, 1<<BatchShift.
func (c Config) B() int { return 1 << c.BatchShift }

// SmallBinSize is the capacity of a small bin: N.
func (c Config) SmallBinSize() int { return c.N() }

// LargeBinSize is the capacity of a large bin: 2*N*B.
func (c Config) LargeBinSize() int { return 2 * c.N() * c.B() }

// NumBins is the conceptual bin count: one per (phase, priority)
// combination over one full cycle, N*B.
func (c Config) NumBins() int { return c.N() * c.B() }

// Rack returns the rack index containing node n. Callers must not pass
// OutOfBoundaryNodeID; use IsOutOfBoundary first.
func (c Config) Rack(n NodeId) int { return int(n) >> c.NodesPerRackShift }

// IsOutOfBoundary reports whether n is the reserved out-of-boundary sentinel.
func (c Config) IsOutOfBoundary(n NodeId) bool { return n == OutOfBoundaryNodeID }

// Validate checks that N, R, and B are well-formed powers of two and that
// the rack capacity is within [0, NodesPerRack()].
func (c Config) Validate() error {
	if c.NodesPerRackShift > c.NodesShift {
		return fmt.Errorf("admit: NodesPerRackShift %d exceeds NodesShift %d", c.NodesPerRackShift, c.NodesShift)
	}
	if int(c.RackCapacity) > c.NodesPerRack() {
		return fmt.Errorf("admit: RackCapacity %d exceeds NodesPerRack %d", c.RackCapacity, c.NodesPerRack())
	}
	if c.N() < 1 || c.B() < 1 {
		return fmt.Errorf("admit: degenerate sizing N=%d B=%d", c.N(), c.B())
	}
	return nil
}

// Edge is one admitted (src, dst) pair.
type Edge struct {
	Src NodeId
	Dst NodeId
}
