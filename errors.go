// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admit

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/admit/ring"
)

// ErrBackpressure is returned by AddBacklog when the urgent ring is full.
// It is a producer-side, recoverable condition (§4.4, §7): the backlog
// table already reflects the added demand, and the flow remains
// discoverable through the end-of-batch reconciliation pass.
var ErrBackpressure = errors.New("admit: urgent ring full, backpressure")

// ErrOverRequest is returned once, the first time AddBacklog would push a
// flow's demand past math.MaxUint32. The counter saturates at the maximum
// instead of wrapping (§7).
var ErrOverRequest = errors.New("admit: demand saturated at maximum")

// IsWouldBlock reports whether err is the non-failure "ring full/empty"
// signal shared by every ring in this module. Delegates to [ring.IsWouldBlock].
func IsWouldBlock(err error) bool { return ring.IsWouldBlock(err) }

// IsNonFailure reports whether err is nil or a control-flow signal rather
// than a real failure. Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool { return iox.IsNonFailure(err) }

// fatalf panics with a prefixed message. Used for the fatal categories in
// §7 (pool exhaustion, bin overflow) and for the other sizing-contract
// violations handled the same way: ring overflow, a failed pool or
// head-token initialization, and an invalid Config passed to NewStatus.
// Each indicates an invariant violation in the caller's sizing, not a
// recoverable runtime condition, so it aborts rather than returning an error.
func fatalf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
