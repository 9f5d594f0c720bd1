// Statistics accounting: per-task moving sums/maxima/totals, the shared
// check-function aggregate, and the system load estimator (spec §4.6).
//
// Grounded in the Betaflight scheduler's movingSumExecutionTime /
// movingSumDeltaTime accumulators and in the teacher's per-task
// TaskStats/SchedulerStats accounting style (vmi/internal/scheduler.go's
// TASK_STATS_* indices and SnapStats), adapted from the teacher's
// four-counters-plus-runtime layout to the moving-sum-of-N form the original
// C source uses.

package flightsched_internal

// movingSumAdd implements s <- s + (x - s/N), the sum-of-N moving average
// recurrence used throughout spec §3/§4.6. N is TaskStatsMovingSumCount.
func movingSumAdd(s, x, n uint32) uint32 {
	return s + x - s/n
}

// expSmoothAdd implements the separate exponential average used for
// movingAverageCycleTime, alpha = 0.05 (spec §4.4 step 5).
func expSmoothAdd(avg, sample float32) float32 {
	const alpha = 0.05
	return avg + alpha*(sample-avg)
}

// checkFuncStats is the single, shared aggregate for all event-driven tasks'
// check functions (spec §9: "a single set of four sums, not per-task").
type checkFuncStats struct {
	movingSumExecutionTime uint32
	movingSumDeltaTime     uint32
	totalExecutionTime     uint64
	maxExecutionTime       uint32
}

func (s *checkFuncStats) record(n, executionTime, deltaTime uint32) {
	s.movingSumExecutionTime = movingSumAdd(s.movingSumExecutionTime, executionTime, n)
	s.movingSumDeltaTime = movingSumAdd(s.movingSumDeltaTime, deltaTime, n)
	s.totalExecutionTime += uint64(executionTime)
	if executionTime > s.maxExecutionTime {
		s.maxExecutionTime = executionTime
	}
}

func (s *checkFuncStats) reset() {
	*s = checkFuncStats{}
}

func (s *checkFuncStats) snapshot(n uint32) CheckFuncInfo {
	return CheckFuncInfo{
		MaxExecutionTime:     s.maxExecutionTime,
		TotalExecutionTime:   s.totalExecutionTime,
		AverageExecutionTime: s.movingSumExecutionTime / n,
		AverageDeltaTime:     s.movingSumDeltaTime / n,
	}
}

// systemLoad accumulates the load-estimator inputs described in spec §4.5/
// §4.6: how many ticks were sampled, and how many non-realtime tasks were
// waiting in total across those ticks.
type systemLoad struct {
	totalWaitingTasksSamples uint32
	totalWaitingTasks        uint32

	// averageSystemLoadPercent is the last value computed by TaskSystemLoad.
	averageSystemLoadPercent uint16
	// simulatorMode forces the reported value to 0 regardless of the raw
	// computation, mirroring the original's `#if defined(SIMULATOR_BUILD)`
	// (supplemented in SPEC_FULL.md; the raw value stays inspectable via
	// Registry.SystemLoadRaw for host-side simulation diagnostics).
	simulatorMode bool
}

func (l *systemLoad) sample(waiting uint32) {
	l.totalWaitingTasksSamples++
	l.totalWaitingTasks += waiting
}

// taskSystemLoad is the periodic task body named in spec §4.6. It recomputes
// averageSystemLoadPercent from the accumulated samples and resets both
// accumulators.
func (l *systemLoad) taskSystemLoad(uint32) {
	if l.totalWaitingTasksSamples > 0 {
		l.averageSystemLoadPercent = uint16(100 * l.totalWaitingTasks / l.totalWaitingTasksSamples)
		l.totalWaitingTasksSamples = 0
		l.totalWaitingTasks = 0
	}
}

func (l *systemLoad) reported() uint16 {
	if l.simulatorMode {
		return 0
	}
	return l.averageSystemLoadPercent
}
