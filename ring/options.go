// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

// PhaseDepth computes the ring depth needed to hold entries for a
// batch of phaseCount timeslots at perPhase entries apiece, rounded up
// to the power of two every constructor in this package requires. The
// admission core sizes its urgent and admitted-out rings this way —
// off a batch's own phase count rather than an arbitrary capacity
// guess — so a caller never has to reason about power-of-two rounding
// directly when wiring a ring to a Config-driven batch size.
func PhaseDepth(phaseCount, perPhase int) int {
	if phaseCount < 1 {
		phaseCount = 1
	}
	if perPhase < 1 {
		perPhase = 1
	}
	return roundToPow2(phaseCount * perPhase)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
