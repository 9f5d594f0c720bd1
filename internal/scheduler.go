// Scheduler Core: the per-tick algorithm (spec §4.4 Execute-Task Routine,
// §4.5 Scheduler Tick).
//
// Ground truth is the original Betaflight scheduler() / schedulerExecuteTask()
// (_examples/original_source/src/main/scheduler/scheduler.c); the surrounding
// struct-of-state / dependency-injected-collaborators shape follows the
// teacher's Scheduler struct (vmi/internal/scheduler.go), generalized from
// goroutine-pool dispatch to the single-threaded cooperative model spec §5
// requires.

package flightsched_internal

import "github.com/sirupsen/logrus"

var schedulerLog = NewCompLogger("scheduler")

// Scheduler ties a Clock, a Registry, the realtime-pipeline collaborators,
// and a debug trace sink together and runs the per-tick algorithm. It holds
// no goroutines and spawns none: Tick runs to completion synchronously on
// the caller's stack, per spec §5.
type Scheduler struct {
	clock    Clock
	registry *Registry
	trace    DebugTraceSink

	gyroEnabled bool
	gyroTaskID  TaskID
	filterID    TaskID
	pidID       TaskID

	gyroFilterReady GyroFilterReadyFunc
	pidLoopReady    PidLoopReadyFunc

	guardIntervalUs uint32

	log *logrus.Entry
}

// NewScheduler constructs a Scheduler. gyroTaskID/filterID/pidID name the
// three realtime-priority tasks; they are only consulted once EnableGyro
// has been called (spec §6 scheduler_enable_gyro).
func NewScheduler(clock Clock, registry *Registry, trace DebugTraceSink, gyroTaskID, filterID, pidID TaskID, cfg *SchedulerConfig) *Scheduler {
	if cfg == nil {
		cfg = DefaultSchedulerConfig()
	}
	if trace == nil {
		trace = NoopDebugTraceSink{}
	}
	return &Scheduler{
		clock:           clock,
		registry:        registry,
		trace:           trace,
		gyroTaskID:      gyroTaskID,
		filterID:        filterID,
		pidID:           pidID,
		guardIntervalUs: cfg.GyroTaskGuardIntervalUs,
		log:             schedulerLog,
	}
}

// EnableGyro turns on Phase A of the tick (spec §6 scheduler_enable_gyro).
func (s *Scheduler) EnableGyro() {
	s.gyroEnabled = true
}

// SetRealtimeReadyFuncs wires the external predicates guarding the filter
// and PID sub-tasks (spec §1/§6: these are external collaborators, named
// only through the interfaces the core consumes).
func (s *Scheduler) SetRealtimeReadyFuncs(gyroFilterReady GyroFilterReadyFunc, pidLoopReady PidLoopReadyFunc) {
	s.gyroFilterReady = gyroFilterReady
	s.pidLoopReady = pidLoopReady
}

// ExecuteTask is the Execute-Task Routine (spec §4.4). It updates the task's
// scheduling state unconditionally, then invokes task_func, sampling the
// clock around the call only if statistics are enabled (spec §4.4 step 5,
// §4.6 "opt-in").
func (s *Scheduler) ExecuteTask(t *Task, now uint32) uint32 {
	if t == nil {
		return 0
	}
	r := s.registry

	t.taskLatestDeltaTime = now - t.lastExecutedAt
	period := float32(t.taskLatestDeltaTime)
	t.lastExecutedAt = now
	t.lastDesiredAt += uint32(cmpTimeUs(now, t.lastDesiredAt)/int32(t.desiredPeriod)) * t.desiredPeriod
	t.dynamicPriority = 0

	r.currentTask = t
	defer func() { r.currentTask = nil }()

	var executionTime uint32
	if r.calculateTaskStatistics {
		before := s.clock.Micros()
		t.taskFunc(before)
		executionTime = s.clock.Micros() - before

		n := r.movingSumCount
		t.movingSumExecutionTime = movingSumAdd(t.movingSumExecutionTime, executionTime, n)
		t.movingSumDeltaTime = movingSumAdd(t.movingSumDeltaTime, t.taskLatestDeltaTime, n)
		t.totalExecutionTime += uint64(executionTime)
		if executionTime > t.maxExecutionTime {
			t.maxExecutionTime = executionTime
		}
		t.movingAverageCycleTime = expSmoothAdd(t.movingAverageCycleTime, period)
	} else {
		t.taskFunc(now)
	}

	return executionTime
}

// Tick is the per-tick entry point named scheduler() in spec §4.5/§6.
func (s *Scheduler) Tick() {
	schedulerStart := s.clock.Micros()
	now := schedulerStart

	var (
		taskExecutionTime uint32
		realtimeTaskRan   bool
		gyroDelayUs       int32
		selectedTask      *Task
		selectedDynPrio   uint32
	)

	r := s.registry

	if s.gyroEnabled {
		gyroTask := r.resolve(s.gyroTaskID)
		gyroDue := r.periodCalculationBasis(gyroTask) + gyroTask.desiredPeriod
		gyroDelayUs = cmpTimeUs(gyroDue, now)

		if timeUsAtOrAfter(now, gyroDue) {
			taskExecutionTime += s.ExecuteTask(gyroTask, now)
			s.trace.Set(DebugChannelGyroUpdate, 0, int32(taskExecutionTime))

			if s.gyroFilterReady != nil && s.gyroFilterReady() {
				taskExecutionTime += s.ExecuteTask(r.resolve(s.filterID), now)
			}
			if s.pidLoopReady != nil && s.pidLoopReady() {
				pidStart := taskExecutionTime
				taskExecutionTime += s.ExecuteTask(r.resolve(s.pidID), now)
				s.trace.Set(DebugChannelPIDController, 0, int32(taskExecutionTime-pidStart))
			}

			now = s.clock.Micros()
			realtimeTaskRan = true
		}
	}

	if !s.gyroEnabled || realtimeTaskRan || gyroDelayUs > int32(s.guardIntervalUs) {
		var waitingTasks uint32

		for t := r.queue.first(); t != nil; t = r.queue.next() {
			if t.staticPriority == PriorityRealtime {
				continue
			}

			if t.IsEventDriven() {
				if t.dynamicPriority > 0 {
					t.taskAgeCycles = 1 + (now-t.lastSignaledAt)/t.desiredPeriod
					t.dynamicPriority = 1 + uint32(t.staticPriority)*t.taskAgeCycles
					waitingTasks++
				} else {
					checkStart := now
					if t.checkFunc(checkStart, checkStart-t.lastExecutedAt) {
						if r.calculateTaskStatistics {
							checkExecutionTime := s.clock.Micros() - checkStart
							s.trace.Set(DebugChannelCheckFuncDuration, 0, int32(checkExecutionTime))
							r.checkFuncStats.record(r.movingSumCount, checkExecutionTime, t.taskLatestDeltaTime)
						}
						t.lastSignaledAt = checkStart
						t.taskAgeCycles = 1
						t.dynamicPriority = 1 + uint32(t.staticPriority)
						waitingTasks++
					} else {
						t.taskAgeCycles = 0
					}
				}
			} else {
				t.taskAgeCycles = (now - r.periodCalculationBasis(t)) / t.desiredPeriod
				if t.taskAgeCycles > 0 {
					t.dynamicPriority = 1 + uint32(t.staticPriority)*t.taskAgeCycles
					waitingTasks++
				}
			}

			if t.dynamicPriority > selectedDynPrio {
				selectedDynPrio = t.dynamicPriority
				selectedTask = t
			}
		}

		r.load.sample(waitingTasks)

		if selectedTask != nil {
			requiredUs := TaskAverageExecuteFallbackUs
			if r.calculateTaskStatistics {
				requiredUs = selectedTask.movingSumExecutionTime/r.movingSumCount + TaskAverageExecutePaddingUs
			}
			requiredUs += uint32(cmpTimeUs(s.clock.Micros(), now))

			if !s.gyroEnabled || realtimeTaskRan || int32(requiredUs) < gyroDelayUs {
				taskExecutionTime += s.ExecuteTask(selectedTask, now)
			}
		}
	}

	s.trace.Set(DebugChannelSchedulerOverhead, 0, int32(s.clock.Micros()-schedulerStart-taskExecutionTime))
}
