// Tests for scheduler.go and registry.go, exercised together since neither
// is useful without the other: the Registry owns the Ready Queue and
// statistics the Scheduler drives each Tick.

package flightsched_internal

import (
	"testing"

	flightsched_testutils "github.com/flightsched/flightsched-go/internal/testutils"
)

// newTestRegistry builds a Registry sized for capacity tasks, the System task
// included. A nil cfg yields the defaults, which turn statistics and
// optimize-rate on.
func newTestRegistry(capacity int, cfg *SchedulerConfig) *Registry {
	return NewRegistry(capacity, cfg)
}

func TestRegisterPanicsAfterInit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("want panic registering after Init, got none")
		}
	}()
	r := newTestRegistry(4, nil)
	sysID := r.Register("system", PriorityIdle, 1000, func(uint32) {}, nil)
	r.Init(sysID)
	r.Register("late", PriorityLow, 1000, func(uint32) {}, nil)
}

// A zero TaskStatsMovingSumCount must not reach the moving-sum recurrence
// unclamped: it would divide by zero the first time a statistics-enabled
// task executes.
func TestNewRegistryClampsZeroMovingSumCount(t *testing.T) {
	r := newTestRegistry(1, &SchedulerConfig{TaskStatsMovingSumCount: 0, CalculateTaskStatistics: true})
	if r.movingSumCount != SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_MIN {
		t.Fatalf("movingSumCount: want %d, got %d", SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_MIN, r.movingSumCount)
	}

	clock := flightsched_testutils.NewFakeClock(0)
	sched := NewScheduler(clock, r, nil, TaskSelf, TaskSelf, TaskSelf, nil)

	id := r.Register("task", PriorityLow, 1000, func(uint32) { clock.Advance(10) }, nil)
	r.Init(id)
	task := r.resolve(id)

	// Would divide by zero in movingSumAdd if the clamp above didn't hold.
	sched.ExecuteTask(task, clock.Micros())
}

func TestRegisterPanicsWhenFull(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("want panic registering beyond capacity, got none")
		}
	}()
	r := newTestRegistry(1, nil)
	r.Register("a", PriorityLow, 1000, func(uint32) {}, nil)
	r.Register("b", PriorityLow, 1000, func(uint32) {}, nil)
}

func TestClampPeriodFloor(t *testing.T) {
	r := newTestRegistry(2, nil)
	id := r.Register("fast", PriorityLow, 1, func(uint32) {}, nil)
	r.Init(id)
	info := r.GetTaskInfo(id)
	if info.DesiredPeriod != SchedulerDelayLimitUs {
		t.Errorf("DesiredPeriod: want %d, got %d", SchedulerDelayLimitUs, info.DesiredPeriod)
	}
}

func TestInitEnablesSystemTaskOnly(t *testing.T) {
	r := newTestRegistry(3, nil)
	otherID := r.Register("other", PriorityLow, 1000, func(uint32) {}, nil)
	sysID := r.Register("system", PriorityIdle, 1000, func(uint32) {}, nil)
	r.Init(sysID)

	if !r.IsEnabled(sysID) {
		t.Error("system task should be enabled after Init")
	}
	if r.IsEnabled(otherID) {
		t.Error("non-system task should not be auto-enabled by Init")
	}
}

func TestSetEnabledWithNilTaskFuncIsSuppressed(t *testing.T) {
	r := newTestRegistry(2, nil)
	sysID := r.Register("system", PriorityIdle, 1000, func(uint32) {}, nil)
	id := r.Register("nilbody", PriorityLow, 1000, nil, nil)
	r.Init(sysID)

	r.SetEnabled(id, true)
	if r.IsEnabled(id) {
		t.Error("a task with a nil task_func must not become enabled")
	}
}

func TestTaskSelfResolvesToCurrentTask(t *testing.T) {
	r := newTestRegistry(2, nil)
	clock := flightsched_testutils.NewFakeClock(0)
	sched := NewScheduler(clock, r, nil, TaskSelf, TaskSelf, TaskSelf, nil)

	var sawSelfPeriod uint32
	id := r.Register("self-reschedule", PriorityLow, 1000, func(now uint32) {
		r.Reschedule(TaskSelf, 2000)
		sawSelfPeriod = r.GetTaskInfo(TaskSelf).DesiredPeriod
	}, nil)
	r.Init(id)
	r.SetEnabled(id, true)

	sched.ExecuteTask(r.resolve(id), clock.Micros())
	if sawSelfPeriod != 2000 {
		t.Errorf("TaskSelf reschedule: want 2000, got %d", sawSelfPeriod)
	}
	if r.currentTask != nil {
		t.Error("currentTask must be cleared once the task body returns")
	}
}

func TestExecuteTaskAdvancesLastDesiredByWholePeriods(t *testing.T) {
	r := newTestRegistry(1, nil)
	clock := flightsched_testutils.NewFakeClock(0)
	sched := NewScheduler(clock, r, nil, TaskSelf, TaskSelf, TaskSelf, nil)

	id := r.Register("periodic", PriorityRealtime, 1000, func(uint32) {}, nil)
	r.Init(id)
	task := r.resolve(id)

	// Two whole periods plus slack elapsed since lastDesiredAt=0.
	sched.ExecuteTask(task, 2500)
	if task.lastDesiredAt != 2000 {
		t.Errorf("lastDesiredAt: want 2000, got %d", task.lastDesiredAt)
	}
	if task.lastExecutedAt != 2500 {
		t.Errorf("lastExecutedAt: want 2500, got %d", task.lastExecutedAt)
	}
	if task.dynamicPriority != 0 {
		t.Errorf("dynamicPriority after execution: want 0, got %d", task.dynamicPriority)
	}
}

func TestExecuteTaskStatisticsOptIn(t *testing.T) {
	r := newTestRegistry(1, &SchedulerConfig{
		TaskStatsMovingSumCount: 1,
		CalculateTaskStatistics: false,
		OptimizeRate:            true,
	})
	clock := flightsched_testutils.NewFakeClock(0)
	sched := NewScheduler(clock, r, nil, TaskSelf, TaskSelf, TaskSelf, nil)

	id := r.Register("work", PriorityLow, 1000, func(uint32) {
		clock.Advance(50)
	}, nil)
	r.Init(id)
	task := r.resolve(id)

	sched.ExecuteTask(task, clock.Micros())
	if task.totalExecutionTime != 0 {
		t.Errorf("statistics disabled: want totalExecutionTime 0, got %d", task.totalExecutionTime)
	}

	r.SetCalculateTaskStatistics(true)
	sched.ExecuteTask(task, clock.Micros())
	if task.totalExecutionTime == 0 {
		t.Error("statistics enabled: want totalExecutionTime > 0")
	}
}

func TestReadyQueuePriorityOrdering(t *testing.T) {
	r := newTestRegistry(4, nil)
	sysID := r.Register("system", PriorityIdle, 1000, func(uint32) {}, nil)
	lowID := r.Register("low", PriorityLow, 1000, func(uint32) {}, nil)
	highID := r.Register("high", PriorityHigh, 1000, func(uint32) {}, nil)
	mediumID := r.Register("medium", PriorityMedium, 1000, func(uint32) {}, nil)
	r.Init(sysID)

	r.SetEnabled(lowID, true)
	r.SetEnabled(highID, true)
	r.SetEnabled(mediumID, true)

	var order []TaskID
	for t := r.queue.first(); t != nil; t = r.queue.next() {
		order = append(order, t.id)
	}
	want := []TaskID{highID, mediumID, lowID, sysID}
	if len(order) != len(want) {
		t.Fatalf("queue length: want %d, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: want task %d, got %d", i, want[i], order[i])
		}
	}
}

func TestTickSelectsHighestDynamicPriorityTimeDriven(t *testing.T) {
	r := newTestRegistry(3, &SchedulerConfig{
		TaskStatsMovingSumCount: 8,
		CalculateTaskStatistics: true,
		OptimizeRate:            true,
	})
	clock := flightsched_testutils.NewFakeClock(0)
	sched := NewScheduler(clock, r, nil, TaskSelf, TaskSelf, TaskSelf, nil)

	var ranA, ranB int
	aID := r.Register("a", PriorityLow, 1000, func(uint32) { ranA++ }, nil)
	bID := r.Register("b", PriorityLow, 1000, func(uint32) { ranB++ }, nil)
	r.Init(aID)
	r.SetEnabled(aID, true)
	r.SetEnabled(bID, true)

	// Age task b longer than a, by executing a once first.
	clock.Set(1000)
	sched.ExecuteTask(r.resolve(aID), clock.Micros())

	clock.Set(3000)
	sched.Tick()

	if ranB == 0 {
		t.Error("task b, aged longer, should have been selected over a")
	}
	if ranA != 1 {
		t.Error("task a should not have run again the very next tick")
	}
}

func TestTickEventDrivenTwoPhaseAging(t *testing.T) {
	r := newTestRegistry(2, &SchedulerConfig{
		TaskStatsMovingSumCount: 8,
		CalculateTaskStatistics: true,
	})
	clock := flightsched_testutils.NewFakeClock(0)
	sched := NewScheduler(clock, r, nil, TaskSelf, TaskSelf, TaskSelf, nil)

	ready := false
	var ran int
	id := r.Register("evt", PriorityLow, 1000, func(uint32) { ran++ }, func(now, age uint32) bool {
		return ready
	})
	r.Init(id)
	r.SetEnabled(id, true)

	clock.Set(500)
	sched.Tick()
	if ran != 0 {
		t.Fatal("task should not run before its check function signals readiness")
	}

	ready = true
	clock.Set(600)
	sched.Tick() // check func observes readiness, sets dynamicPriority, does not yet execute via the check path itself
	if ran != 1 {
		t.Fatalf("want exactly one execution once the check function signals, got %d", ran)
	}
}

func TestSystemLoadSimulatorModeForcesZero(t *testing.T) {
	l := &systemLoad{simulatorMode: true}
	l.sample(3)
	l.sample(5)
	l.taskSystemLoad(0)
	if got := l.reported(); got != 0 {
		t.Errorf("simulator mode: want reported load 0, got %d", got)
	}
	if l.averageSystemLoadPercent == 0 {
		t.Error("raw averageSystemLoadPercent should still reflect the computation")
	}
}

func TestSystemLoadComputation(t *testing.T) {
	l := &systemLoad{}
	l.sample(1)
	l.sample(0)
	l.sample(1)
	l.sample(0)
	l.taskSystemLoad(0)
	if got := l.reported(); got != 50 {
		t.Errorf("load: want 50, got %d", got)
	}
	// Accumulators reset after computation.
	l.taskSystemLoad(0)
	if got := l.reported(); got != 50 {
		t.Errorf("load unchanged without new samples: want 50, got %d", got)
	}
}

func TestGuardIntervalGatesPhaseB(t *testing.T) {
	r := newTestRegistry(3, &SchedulerConfig{
		TaskStatsMovingSumCount: 8,
		CalculateTaskStatistics: true,
		GyroTaskGuardIntervalUs: 100,
		OptimizeRate:            true,
	})
	clock := flightsched_testutils.NewFakeClock(0)

	gyroID := r.Register("gyro", PriorityRealtime, 1000, func(now uint32) {}, nil)
	var lowRan int
	lowID := r.Register("low", PriorityLow, 1000, func(uint32) { lowRan++ }, nil)
	r.Init(gyroID)
	r.SetEnabled(lowID, true)

	sched := NewScheduler(clock, r, nil, gyroID, gyroID, gyroID, &SchedulerConfig{GyroTaskGuardIntervalUs: 100})
	sched.EnableGyro()

	// Age "low" by two full periods, but position the clock so the realtime
	// deadline is imminent and inside the guard interval: Phase B must not run.
	r.resolve(lowID).lastExecutedAt = 0
	r.resolve(gyroID).lastDesiredAt = 2000
	clock.Set(2950) // 50us before gyro is due, well under the 100us guard
	sched.Tick()

	if lowRan != 0 {
		t.Error("Phase B should be suppressed when inside the realtime guard interval and gyro didn't run")
	}
}

func TestResetStatistics(t *testing.T) {
	r := newTestRegistry(1, &SchedulerConfig{TaskStatsMovingSumCount: 4, CalculateTaskStatistics: true})
	clock := flightsched_testutils.NewFakeClock(0)
	sched := NewScheduler(clock, r, nil, TaskSelf, TaskSelf, TaskSelf, nil)

	id := r.Register("work", PriorityLow, 1000, func(uint32) { clock.Advance(10) }, nil)
	r.Init(id)
	task := r.resolve(id)

	sched.ExecuteTask(task, clock.Micros())
	if task.maxExecutionTime == 0 {
		t.Fatal("expected non-zero maxExecutionTime before reset")
	}

	r.ResetTaskMaxExecutionTime(id)
	if task.maxExecutionTime != 0 {
		t.Error("ResetTaskMaxExecutionTime should zero only the max")
	}

	r.ResetTaskStatistics(id)
	if task.totalExecutionTime != 0 || task.movingSumExecutionTime != 0 {
		t.Error("ResetTaskStatistics should zero the accumulators")
	}
}

func TestCheckFuncStatsShared(t *testing.T) {
	s := &checkFuncStats{}
	s.record(4, 10, 100)
	s.record(4, 20, 200)
	info := s.snapshot(4)
	if info.TotalExecutionTime != 30 {
		t.Errorf("TotalExecutionTime: want 30, got %d", info.TotalExecutionTime)
	}
	if info.MaxExecutionTime != 20 {
		t.Errorf("MaxExecutionTime: want 20, got %d", info.MaxExecutionTime)
	}
	s.reset()
	if s.totalExecutionTime != 0 || s.maxExecutionTime != 0 {
		t.Error("reset should zero every accumulator")
	}
}
