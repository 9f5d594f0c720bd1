// External collaborators named, but not implemented, by spec §1/§6: the
// realtime sub-task readiness predicates and the debug trace sink. The
// scheduler core only ever holds these as interface/function values supplied
// at construction time; cmd/flightsim provides concrete implementations.

package flightsched_internal

// GyroFilterReadyFunc and PidLoopReadyFunc guard the filter and PID stages of
// the realtime pipeline (spec §4.5 Phase A). They are polled only once the
// gyro task itself has run this tick.
type GyroFilterReadyFunc func() bool
type PidLoopReadyFunc func() bool

// Debug trace channels, matching the original's DEBUG_SCHEDULER layout
// (_examples/original_source/src/main/scheduler/scheduler.c lines 47-51).
const (
	DebugChannelGyroUpdate = iota
	DebugChannelPIDController
	DebugChannelSchedulerOverhead
	DebugChannelCheckFuncDuration
)

// DebugTraceSink records scheduler-overhead and check-function durations.
// It is purely a diagnostic side channel: the core never branches on it.
type DebugTraceSink interface {
	Set(channel, slot int, value int32)
}

// NoopDebugTraceSink is the zero-cost default; Set is a no-op so the hot
// path pays only the cost of an interface call, never an allocation.
type NoopDebugTraceSink struct{}

func (NoopDebugTraceSink) Set(channel, slot int, value int32) {}
