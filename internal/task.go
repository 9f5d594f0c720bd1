// Task descriptor: static config plus mutable scheduling and statistics
// state. One descriptor per registered task, allocated once at startup and
// never freed or reallocated (see Registry.Init).

package flightsched_internal

// Priority is the static, compile-time-assigned priority band of a task.
// REALTIME is a distinguished sentinel: only the gyro/filter/PID triplet may
// carry it, and tasks with this priority are never selected by the
// dynamic-priority pass (Phase B), only by the realtime slot (Phase A).
type Priority int32

const (
	PriorityIdle Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityRealtime
)

// TaskID indexes into the Registry's static task table. TaskSelf is a
// sentinel accepted by every control-surface entry point in place of a
// concrete id; it resolves to whichever task is currently executing.
type TaskID int32

const TaskSelf TaskID = -1

// TaskFunc is a task body. It receives the timestamp the scheduler captured
// for this invocation and must return promptly: there is no preemption, so a
// long-running task body stalls every other task, including the realtime
// pipeline.
type TaskFunc func(now uint32)

// CheckFunc marks a task as event-driven. It is polled once per tick (while
// the task isn't already a pending, aged, "signaled" candidate) and reports
// whether the task has become ready to run. age is now - lastExecutedAt.
type CheckFunc func(now, age uint32) bool

// Task is the per-task descriptor. Fields are grouped the way spec.md groups
// them: static config, queue/scheduling state, and statistics.
type Task struct {
	// Identity, set at registration and never mutated again.
	id   TaskID
	name string

	// Static config.
	taskFunc       TaskFunc
	checkFunc      CheckFunc // nil => time-driven
	staticPriority Priority
	desiredPeriod  uint32 // microseconds, floor = SchedulerDelayLimitUs

	// Scheduling state, mutated every tick/execution.
	lastExecutedAt  uint32
	lastDesiredAt   uint32
	lastSignaledAt  uint32
	dynamicPriority uint32
	taskAgeCycles   uint32

	taskLatestDeltaTime uint32

	// Statistics (opt-in, see Registry.SetCalculateTaskStatistics).
	movingSumExecutionTime  uint32
	movingSumDeltaTime      uint32
	totalExecutionTime      uint64
	maxExecutionTime        uint32
	movingAverageCycleTime  float32
}

// IsEventDriven reports whether the task is polled via CheckFunc rather than
// scheduled purely by elapsed time.
func (t *Task) IsEventDriven() bool { return t.checkFunc != nil }

// TaskInfo is a value-copied, read-only snapshot of a task's static config
// and statistics, returned by Registry.GetTaskInfo. It never aliases live
// registry state.
type TaskInfo struct {
	Name                 string
	IsEnabled            bool
	StaticPriority       Priority
	DesiredPeriod        uint32
	MaxExecutionTime     uint32
	TotalExecutionTime   uint64
	AverageExecutionTime uint32
	AverageDeltaTime     uint32
	LatestDeltaTime      uint32
	MovingAverageCycleTime float32
}

// CheckFuncInfo is the aggregate (not per-task) statistics snapshot for all
// event-driven tasks' check functions, per spec §4.2/§4.6/§9.
type CheckFuncInfo struct {
	MaxExecutionTime     uint32
	TotalExecutionTime   uint64
	AverageExecutionTime uint32
	AverageDeltaTime     uint32
}
