// The public face of the scheduler for the users of this package.

package flightsched

import (
	"github.com/sirupsen/logrus"

	flightsched_internal "github.com/flightsched/flightsched-go/internal"
)

// Priority is the static, compile-time priority band of a task. Realtime is
// reserved for the gyro/filter/PID triplet driven by Phase A of Tick.
type Priority = flightsched_internal.Priority

const (
	PriorityIdle     = flightsched_internal.PriorityIdle
	PriorityLow      = flightsched_internal.PriorityLow
	PriorityMedium   = flightsched_internal.PriorityMedium
	PriorityHigh     = flightsched_internal.PriorityHigh
	PriorityRealtime = flightsched_internal.PriorityRealtime
)

// TaskID identifies a registered task. TaskSelf, passed to any control
// surface method, resolves to whichever task is currently executing.
type TaskID = flightsched_internal.TaskID

const TaskSelf = flightsched_internal.TaskSelf

// TaskFunc is a task body; CheckFunc marks a task event-driven.
type TaskFunc = flightsched_internal.TaskFunc
type CheckFunc = flightsched_internal.CheckFunc

// TaskInfo and CheckFuncInfo are read-only snapshots returned by GetTaskInfo
// and GetCheckFuncInfo respectively.
type TaskInfo = flightsched_internal.TaskInfo
type CheckFuncInfo = flightsched_internal.CheckFuncInfo

// Clock abstracts the monotonic microsecond source Tick reads; cmd/flightsim
// wires a real one, tests wire a fake.
type Clock = flightsched_internal.Clock

// GyroFilterReadyFunc and PidLoopReadyFunc gate the filter/PID stages of the
// realtime pipeline. DebugTraceSink is the diagnostic side channel for
// per-tick timing; RingBufferDebugTraceSink is a bounded implementation
// suitable for long-running processes, NoopDebugTraceSink the zero-cost
// default.
type GyroFilterReadyFunc = flightsched_internal.GyroFilterReadyFunc
type PidLoopReadyFunc = flightsched_internal.PidLoopReadyFunc
type DebugTraceSink = flightsched_internal.DebugTraceSink
type RingBufferDebugTraceSink = flightsched_internal.RingBufferDebugTraceSink
type NoopDebugTraceSink = flightsched_internal.NoopDebugTraceSink

const (
	DebugChannelGyroUpdate        = flightsched_internal.DebugChannelGyroUpdate
	DebugChannelPIDController     = flightsched_internal.DebugChannelPIDController
	DebugChannelSchedulerOverhead = flightsched_internal.DebugChannelSchedulerOverhead
	DebugChannelCheckFuncDuration = flightsched_internal.DebugChannelCheckFuncDuration
)

// SchedulerConfig and LoggerConfig are the YAML-loadable configuration
// surfaces; LoadConfig parses a config file's flightsched_config section
// into a *SchedulerConfig and an arbitrary caller-supplied section (e.g. a
// simulator's task list) into tasksConfig.
type SchedulerConfig = flightsched_internal.SchedulerConfig
type LoggerConfig = flightsched_internal.LoggerConfig
type DebugTraceConfig = flightsched_internal.DebugTraceConfig

func DefaultSchedulerConfig() *SchedulerConfig { return flightsched_internal.DefaultSchedulerConfig() }

func LoadConfig(cfgFile string, tasksConfig any, buf []byte) (*SchedulerConfig, error) {
	return flightsched_internal.LoadConfig(cfgFile, tasksConfig, buf)
}

// NewRealClock returns a Clock backed by time.Now(), relative to the instant
// it was constructed.
func NewRealClock() *flightsched_internal.RealClock {
	return flightsched_internal.NewRealClock()
}

// NewRingBufferDebugTraceSink builds a bounded DebugTraceSink; sizeStr is a
// human size string such as "4KB" bounding the retained samples per channel.
func NewRingBufferDebugTraceSink(sizeStr string, numChannels int) (*RingBufferDebugTraceSink, error) {
	return flightsched_internal.NewRingBufferDebugTraceSink(sizeStr, numChannels)
}

// Registry owns the static task table, the Ready Queue, and the scheduling
// mode flags. Register every task before calling Init; registration after
// Init panics, matching the no-dynamic-task-creation invariant.
type Registry = flightsched_internal.Registry

func NewRegistry(capacity int, cfg *SchedulerConfig) *Registry {
	return flightsched_internal.NewRegistry(capacity, cfg)
}

// Scheduler drives the per-tick algorithm against a Registry. It holds no
// goroutines: Tick runs synchronously to completion on the caller's stack.
type Scheduler = flightsched_internal.Scheduler

// NewScheduler constructs a Scheduler. gyroTaskID/filterID/pidID name the
// realtime-priority triplet; they are consulted only once EnableGyro has
// been called.
func NewScheduler(clock Clock, registry *Registry, trace DebugTraceSink, gyroTaskID, filterID, pidID TaskID, cfg *SchedulerConfig) *Scheduler {
	return flightsched_internal.NewScheduler(clock, registry, trace, gyroTaskID, filterID, pidID, cfg)
}

// The root logger. Needed only for tests where the logger is captured (see
// internal/testutils/log_collector.go); its actual type is obscured.
func GetRootLogger() any { return flightsched_internal.RootLogger }

// NewCompLogger creates a component logger with a comp=compName field.
func NewCompLogger(comp string) *logrus.Entry {
	return flightsched_internal.NewCompLogger(comp)
}

// AddCallerSrcPathPrefixToLogger registers the caller's module path, inferred
// by walking up N directories from the caller's file, as a prefix to strip
// from logged source locations. Typically called once from main.init().
func AddCallerSrcPathPrefixToLogger(upNDirs int) {
	flightsched_internal.AddCallerSrcPathPrefixToLogger(upNDirs, 1)
}

// SetLogger applies a LoggerConfig to the root logger.
func SetLogger(cfg *LoggerConfig) error {
	return flightsched_internal.SetLogger(cfg)
}

// FormatFlagUsage wraps a flag.String usage message at the conventional
// help-text width, discarding the source indentation.
func FormatFlagUsage(usage string) string {
	return flightsched_internal.FormatFlagUsage(usage)
}
