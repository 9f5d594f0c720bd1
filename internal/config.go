// Scheduler configuration.
//
// The configuration is loaded from a YAML file, with the following structure:
//
//  flightsched_config:
//    gyro_task_guard_interval_us: 30
//    task_stats_moving_sum_count: 32
//    optimize_rate: true
//    calculate_task_statistics: true
//    simulator_mode: false
//    log_config:
//      ...
//    debug_trace_config:
//      ...
//  tasks:
//    telemetry:
//      ...
//    blackbox:
//      ...
//
// The "flightsched_config" section maps to the SchedulerConfig structure
// defined in this package. The "tasks" section is simulator-specific (it
// configures the illustrative task bodies in cmd/flightsim) and is not
// defined here, following the same two-section split the teacher uses for
// its "vmi_config"/"generators" top-level sections
// (vmi/internal/config.go).

package flightsched_internal

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	SCHEDULER_CONFIG_SECTION_NAME = "flightsched_config"
	TASKS_SECTION_NAME            = "tasks"

	SCHEDULER_CONFIG_GYRO_GUARD_INTERVAL_US_DEFAULT   uint32 = 30
	SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_DEFAULT   uint32 = 32
	SCHEDULER_CONFIG_OPTIMIZE_RATE_DEFAULT                   = true
	SCHEDULER_CONFIG_CALCULATE_TASK_STATISTICS_DEFAULT       = true
	SCHEDULER_CONFIG_SIMULATOR_MODE_DEFAULT                  = false
	SCHEDULER_CONFIG_DEBUG_TRACE_BUFFER_SIZE_DEFAULT         = "1KB"

	// SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_MIN is the floor for
	// TaskStatsMovingSumCount. The original source hard-codes N as a
	// #define that can never be zero; promoting it to a runtime config
	// field reintroduces a divide-by-zero failure mode (movingSumAdd,
	// the admission-test division) that config_test.go's LoadConfig tests
	// guard against, so every path that produces a SchedulerConfig clamps
	// to this floor instead of trusting the input.
	SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_MIN uint32 = 1
)

// DebugTraceConfig configures the simulator's bounded debug trace retention
// (SPEC_FULL.md Domain Stack → Debug Trace Sink).
type DebugTraceConfig struct {
	// Enable records samples into a RingBufferDebugTraceSink; if false the
	// scheduler is wired with NoopDebugTraceSink.
	Enable bool `yaml:"enable"`
	// BufferSize is a human size string (e.g. "4KB") bounding retained
	// samples, parsed with github.com/docker/go-units.
	BufferSize string `yaml:"buffer_size"`
}

func DefaultDebugTraceConfig() *DebugTraceConfig {
	return &DebugTraceConfig{
		Enable:     false,
		BufferSize: SCHEDULER_CONFIG_DEBUG_TRACE_BUFFER_SIZE_DEFAULT,
	}
}

// SchedulerConfig holds every tunable named in spec §4.2/§6 that is not a
// fixed API constant (those live in constants.go), plus the ambient
// logging/debug-trace knobs added by SPEC_FULL.md.
type SchedulerConfig struct {
	// GyroTaskGuardIntervalUs is GYRO_TASK_GUARD_INTERVAL_US: the minimum
	// slack, in microseconds, required before the next realtime deadline
	// for Phase B to run at all (spec §4.5).
	GyroTaskGuardIntervalUs uint32 `yaml:"gyro_task_guard_interval_us"`

	// TaskStatsMovingSumCount is N, the moving-sum divisor (spec §3
	// invariant 5, §4.6).
	TaskStatsMovingSumCount uint32 `yaml:"task_stats_moving_sum_count"`

	// OptimizeRate is the initial value for the optimize-rate mode (spec
	// §4.2 optimize_rate / §4.3).
	OptimizeRate bool `yaml:"optimize_rate"`

	// CalculateTaskStatistics is the initial value for the statistics
	// hot-path toggle (spec §4.2 schedulerSetCalulateTaskStatistics).
	CalculateTaskStatistics bool `yaml:"calculate_task_statistics"`

	// SimulatorMode forces AverageSystemLoadPercent() to 0 (spec §4.6,
	// supplemented per SPEC_FULL.md; mirrors the original's
	// `#if defined(SIMULATOR_BUILD)`).
	SimulatorMode bool `yaml:"simulator_mode"`

	LoggerConfig     *LoggerConfig     `yaml:"log_config"`
	DebugTraceConfig *DebugTraceConfig `yaml:"debug_trace_config"`
}

func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		GyroTaskGuardIntervalUs: SCHEDULER_CONFIG_GYRO_GUARD_INTERVAL_US_DEFAULT,
		TaskStatsMovingSumCount: clampMovingSumCount(SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_DEFAULT),
		OptimizeRate:            SCHEDULER_CONFIG_OPTIMIZE_RATE_DEFAULT,
		CalculateTaskStatistics: SCHEDULER_CONFIG_CALCULATE_TASK_STATISTICS_DEFAULT,
		SimulatorMode:           SCHEDULER_CONFIG_SIMULATOR_MODE_DEFAULT,
		LoggerConfig:            DefaultLoggerConfig(),
		DebugTraceConfig:        DefaultDebugTraceConfig(),
	}
}

// clampMovingSumCount floors N to SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_MIN,
// the same way Registry.clampPeriod floors a task's desired period.
func clampMovingSumCount(n uint32) uint32 {
	if n < SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_MIN {
		return SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_MIN
	}
	return n
}

// LoadConfig loads the configuration from the specified YAML file (or buf,
// for testing) as follows:
//   - the flightsched_config section is returned as a *SchedulerConfig
//   - the tasks section is loaded into the provided tasksConfig structure,
//     which is expected to have been primed with default values.
//
// Ported from the teacher's two-section yaml.Node walk
// (vmi/internal/config.go LoadConfig), since the scheduler config must
// coexist in one file with simulator-specific sections the core package
// doesn't know the shape of.
func LoadConfig(cfgFile string, tasksConfig any, buf []byte) (*SchedulerConfig, error) {
	if buf == nil {
		f, err := os.Open(cfgFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		buf, err = io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
		}
	}

	docNode := yaml.Node{}
	if err := yaml.Unmarshal(buf, &docNode); err != nil {
		return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
	}

	schedulerConfig := DefaultSchedulerConfig()
	if docNode.Kind == yaml.DocumentNode && len(docNode.Content) > 0 {
		rootNode := docNode.Content[0]
		if rootNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("file: %q: invalid YAML root node %q", cfgFile, rootNode.Tag)
		}
		var toCfg any = nil
		for _, n := range rootNode.Content {
			if n.Kind == yaml.ScalarNode {
				switch n.Value {
				case SCHEDULER_CONFIG_SECTION_NAME:
					toCfg = schedulerConfig
				case TASKS_SECTION_NAME:
					toCfg = tasksConfig
				}
				continue
			}
			if n.Kind == yaml.MappingNode && toCfg != nil {
				if err := n.Decode(toCfg); err != nil {
					return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
				}
			}
			toCfg = nil
		}
	}
	schedulerConfig.TaskStatsMovingSumCount = clampMovingSumCount(schedulerConfig.TaskStatsMovingSumCount)

	return schedulerConfig, nil
}
