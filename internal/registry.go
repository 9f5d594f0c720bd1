// Task Registry: the static task table plus the public control surface
// named in spec §4.2/§6 (reschedule, set_enabled, get_delta_time,
// get_task_info, reset_task_statistics, reset_task_max_execution_time,
// optimize_rate, schedulerSetCalulateTaskStatistics).
//
// Grounded in the original scheduler.c's cfTasks[]/rescheduleTask/
// setTaskEnabled/getTaskInfo functions, restructured as methods on a single
// owned struct per spec §9's "expose as a singleton struct ... passed by
// reference" design note (as opposed to hidden package-level statics, which
// is how the original C and the teacher's vmi_internal package both do it).

package flightsched_internal

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var registryLog = NewCompLogger("registry")

// Registry owns the static task table, the Ready Queue, and the scheduling
// mode flags (optimize-rate basis, statistics on/off). It is constructed
// once per scheduler instance and is not safe for concurrent use — per spec
// §5, the whole core is single-threaded cooperative.
type Registry struct {
	tasks []*Task
	byID  map[TaskID]*Task
	queue *readyQueue

	currentTask *Task

	calculateTaskStatistics bool
	optimizeRate            bool

	checkFuncStats checkFuncStats
	load           systemLoad

	movingSumCount  uint32
	guardIntervalUs uint32

	initialized bool

	log *logrus.Entry
}

// NewRegistry creates a Registry sized for up to capacity tasks. capacity
// corresponds to TASK_COUNT in spec §6; the Ready Queue is sized
// capacity+1 per spec §3.
func NewRegistry(capacity int, cfg *SchedulerConfig) *Registry {
	if cfg == nil {
		cfg = DefaultSchedulerConfig()
	}
	return &Registry{
		tasks:                   make([]*Task, 0, capacity),
		byID:                    make(map[TaskID]*Task, capacity),
		queue:                   newReadyQueue(capacity),
		calculateTaskStatistics: cfg.CalculateTaskStatistics,
		optimizeRate:            cfg.OptimizeRate,
		load:                    systemLoad{simulatorMode: cfg.SimulatorMode},
		movingSumCount:          clampMovingSumCount(cfg.TaskStatsMovingSumCount),
		guardIntervalUs:         cfg.GyroTaskGuardIntervalUs,
		log:                     registryLog,
	}
}

// Register adds a task to the static table. It must be called before Init;
// spec §1/§5 explicitly forbid dynamic task creation after startup, so a
// post-Init call panics rather than silently doing nothing (an Open
// Question resolved in SPEC_FULL.md in favor of the stricter reading).
func (r *Registry) Register(name string, priority Priority, desiredPeriodUs uint32, taskFunc TaskFunc, checkFunc CheckFunc) TaskID {
	if r.initialized {
		panic("flightsched: Register called after Init; dynamic task creation is not supported")
	}
	if len(r.tasks) == cap(r.tasks) {
		panic(fmt.Sprintf("flightsched: task registry full (capacity %d)", cap(r.tasks)))
	}
	id := TaskID(len(r.tasks))
	t := &Task{
		id:             id,
		name:           name,
		taskFunc:       taskFunc,
		checkFunc:      checkFunc,
		staticPriority: priority,
		desiredPeriod:  r.clampPeriod(desiredPeriodUs),
	}
	r.tasks = append(r.tasks, t)
	r.byID[id] = t
	r.log.Infof("registered task %q: id=%d priority=%d period=%dus", name, id, priority, t.desiredPeriod)
	return id
}

// Init freezes the registry and enables the System task unconditionally, per
// spec §3 Lifecycle. systemTaskID must name a previously Register-ed task
// (conventionally a task performing statistics/housekeeping such as
// TaskSystemLoad).
func (r *Registry) Init(systemTaskID TaskID) {
	r.queue.clear()
	r.initialized = true
	if t := r.byID[systemTaskID]; t != nil {
		r.queue.add(t)
	}
	r.log.Info("registry initialized")
}

func (r *Registry) clampPeriod(periodUs uint32) uint32 {
	if periodUs < SchedulerDelayLimitUs {
		return SchedulerDelayLimitUs
	}
	return periodUs
}

func (r *Registry) resolve(id TaskID) *Task {
	if id == TaskSelf {
		return r.currentTask
	}
	return r.byID[id]
}

// Reschedule clamps newPeriodUs to the delay-limit floor and assigns it as
// the task's new desired period (spec §4.2 reschedule).
func (r *Registry) Reschedule(id TaskID, newPeriodUs uint32) {
	if t := r.resolve(id); t != nil {
		t.desiredPeriod = r.clampPeriod(newPeriodUs)
	}
}

// SetEnabled enables or disables a task (spec §4.2 set_enabled). Enabling a
// task with a nil task_func is silently suppressed (spec §7).
func (r *Registry) SetEnabled(id TaskID, enabled bool) {
	t := r.resolve(id)
	if t == nil {
		return
	}
	if enabled && t.taskFunc != nil {
		r.queue.add(t)
	} else {
		r.queue.remove(t)
	}
}

// IsEnabled reports whether the task is currently in the Ready Queue.
func (r *Registry) IsEnabled(id TaskID) bool {
	t := r.resolve(id)
	return t != nil && r.queue.contains(t)
}

// GetDeltaTime returns the task's most recently observed inter-execution
// interval, or 0 for an unknown id (spec §4.2 get_delta_time).
func (r *Registry) GetDeltaTime(id TaskID) uint32 {
	if t := r.resolve(id); t != nil {
		return t.taskLatestDeltaTime
	}
	return 0
}

// GetTaskInfo returns a value-copied snapshot of static config and
// statistics (spec §4.2 get_task_info). Returns the zero value for an
// unknown id.
func (r *Registry) GetTaskInfo(id TaskID) TaskInfo {
	t := r.resolve(id)
	if t == nil {
		return TaskInfo{}
	}
	n := r.movingSumCount
	return TaskInfo{
		Name:                   t.name,
		IsEnabled:              r.queue.contains(t),
		StaticPriority:         t.staticPriority,
		DesiredPeriod:          t.desiredPeriod,
		MaxExecutionTime:       t.maxExecutionTime,
		TotalExecutionTime:     t.totalExecutionTime,
		AverageExecutionTime:   t.movingSumExecutionTime / n,
		AverageDeltaTime:       t.movingSumDeltaTime / n,
		LatestDeltaTime:        t.taskLatestDeltaTime,
		MovingAverageCycleTime: t.movingAverageCycleTime,
	}
}

// GetCheckFuncInfo returns the aggregate check-function statistics shared by
// all event-driven tasks (spec §4.2/§9).
func (r *Registry) GetCheckFuncInfo() CheckFuncInfo {
	return r.checkFuncStats.snapshot(r.movingSumCount)
}

// ResetTaskStatistics zeroes a task's moving-sum and total accumulators
// (spec §4.2 reset_task_statistics).
func (r *Registry) ResetTaskStatistics(id TaskID) {
	if t := r.resolve(id); t != nil {
		t.movingSumExecutionTime = 0
		t.movingSumDeltaTime = 0
		t.totalExecutionTime = 0
		t.maxExecutionTime = 0
	}
}

// ResetTaskMaxExecutionTime zeroes only the max-execution-time accumulator
// (spec §4.2 reset_task_max_execution_time).
func (r *Registry) ResetTaskMaxExecutionTime(id TaskID) {
	if t := r.resolve(id); t != nil {
		t.maxExecutionTime = 0
	}
}

// ResetCheckFunctionMaxExecutionTime zeroes the shared check-function max
// (spec §6 reset_check_function_max_execution_time).
func (r *Registry) ResetCheckFunctionMaxExecutionTime() {
	r.checkFuncStats.maxExecutionTime = 0
}

// SetCalculateTaskStatistics globally enables/disables the statistics hot
// path (spec §4.2 schedulerSetCalulateTaskStatistics).
func (r *Registry) SetCalculateTaskStatistics(enabled bool) {
	r.calculateTaskStatistics = enabled
}

// OptimizeRate selects the period-calculation basis for realtime tasks: true
// prefers lastDesiredAt (phase-locked), false prefers lastExecutedAt
// (drift-tolerant). Spec §4.2/§4.3.
func (r *Registry) OptimizeRate(optimize bool) {
	r.optimizeRate = optimize
}

// periodCalculationBasis implements spec §4.3: realtime tasks use the mode-
// selected basis field, everything else always uses lastExecutedAt.
func (r *Registry) periodCalculationBasis(t *Task) uint32 {
	if t.staticPriority == PriorityRealtime {
		if r.optimizeRate {
			return t.lastDesiredAt
		}
		return t.lastExecutedAt
	}
	return t.lastExecutedAt
}

// AverageSystemLoadPercent is the last value computed by TaskSystemLoad,
// forced to 0 under SimulatorMode exactly as the original's
// `#if defined(SIMULATOR_BUILD)` branch (spec §4.6, supplemented in
// SPEC_FULL.md).
func (r *Registry) AverageSystemLoadPercent() uint16 {
	return r.load.reported()
}

// SystemLoadRaw exposes the un-forced value for host-side simulation
// diagnostics (SPEC_FULL.md System load supplement).
func (r *Registry) SystemLoadRaw() uint16 {
	return r.load.averageSystemLoadPercent
}

// TaskSystemLoad is the periodic housekeeping task body named in spec §4.6.
// Register it as a normal, time-driven task (conventionally the System
// task enabled at Init).
func (r *Registry) TaskSystemLoad(now uint32) {
	r.load.taskSystemLoad(now)
}
