package flightsched_internal

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/huandu/go-clone"
)

type LoadConfigTestCase struct {
	Name                string
	Description         string
	TasksConfig         any
	Data                string
	WantSchedulerConfig *SchedulerConfig
	WantTasksConfig     any
	WantErr             error
}

type TelemetryTaskConfigTest struct {
	RateHz int      `yaml:"rate_hz"`
	Fields []string `yaml:"fields"`
}

type BlackboxTaskConfigTest struct {
	RateHz int `yaml:"rate_hz"`
}

type TasksConfigTest struct {
	Telemetry *TelemetryTaskConfigTest `yaml:"telemetry"`
	Blackbox  *BlackboxTaskConfigTest  `yaml:"blackbox"`
}

func defaultTasksConfig() *TasksConfigTest {
	return &TasksConfigTest{
		Telemetry: &TelemetryTaskConfigTest{RateHz: 10},
		Blackbox:  &BlackboxTaskConfigTest{RateHz: 50},
	}
}

func testLoadConfig(t *testing.T, tc *LoadConfigTestCase) {
	if tc.Description != "" {
		t.Log(tc.Description)
	}
	tasksConfig := clone.Clone(tc.TasksConfig)
	gotSchedulerConfig, err := LoadConfig("", tasksConfig, []byte(strings.ReplaceAll(tc.Data, "\t", "  ")))
	if tc.WantErr == nil && err != nil {
		t.Fatal(err)
	}
	if tc.WantErr != nil && err == nil {
		t.Fatalf("err: want %v, got %v", tc.WantErr, err)
	}

	if diff := cmp.Diff(tc.WantSchedulerConfig, gotSchedulerConfig); diff != "" {
		t.Fatalf("SchedulerConfig mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(tc.WantTasksConfig, tasksConfig); diff != "" {
		t.Fatalf("TasksConfig mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSchedulerConfig(t *testing.T) {
	tasksData := `
		tasks:
			telemetry:
				rate_hz: 20
	`
	ignoredData := `
		ignore:
			- name: name1
			  type: test
	`

	name1 := "flightsched_config_top_level"
	data1 := `
		flightsched_config:
			gyro_task_guard_interval_us: 45
			optimize_rate: false
	`
	cfg1 := DefaultSchedulerConfig()
	cfg1.GyroTaskGuardIntervalUs = 45
	cfg1.OptimizeRate = false

	name2 := "task_stats_moving_sum_count"
	data2 := `
		flightsched_config:
			task_stats_moving_sum_count: 16
	`
	cfg2 := DefaultSchedulerConfig()
	cfg2.TaskStatsMovingSumCount = 16

	name2zero := "task_stats_moving_sum_count_zero_clamped"
	data2zero := `
		flightsched_config:
			task_stats_moving_sum_count: 0
	`
	cfg2zero := DefaultSchedulerConfig()
	cfg2zero.TaskStatsMovingSumCount = SCHEDULER_CONFIG_STATS_MOVING_SUM_COUNT_MIN

	name3 := "simulator_mode"
	data3 := `
		flightsched_config:
			simulator_mode: true
	`
	cfg3 := DefaultSchedulerConfig()
	cfg3.SimulatorMode = true

	name4 := "log_config"
	data4 := `
		flightsched_config:
			log_config:
				level: debug
	`
	cfg4 := DefaultSchedulerConfig()
	cfg4.LoggerConfig.Level = "debug"

	name5 := "debug_trace_config"
	data5 := `
		flightsched_config:
			debug_trace_config:
				enable: true
				buffer_size: 4KB
	`
	cfg5 := DefaultSchedulerConfig()
	cfg5.DebugTraceConfig.Enable = true
	cfg5.DebugTraceConfig.BufferSize = "4KB"

	for _, tc := range []*LoadConfigTestCase{
		{
			Name:                "default",
			WantSchedulerConfig: DefaultSchedulerConfig(),
		},
		{
			Name: "flightsched_config_empty",
			Data: `
				flightsched_config:
			`,
			WantSchedulerConfig: DefaultSchedulerConfig(),
		},
		{
			Name:                name1,
			Data:                data1,
			WantSchedulerConfig: cfg1,
		},
		{
			Name:                name2,
			Data:                data2,
			WantSchedulerConfig: cfg2,
		},
		{
			Name:                name2zero,
			Description:         "a zero moving-sum window must be clamped to the floor, not loaded verbatim, to avoid a divide-by-zero in the statistics recurrence",
			Data:                data2zero,
			WantSchedulerConfig: cfg2zero,
		},
		{
			Name:                name3,
			Data:                data3,
			WantSchedulerConfig: cfg3,
		},
		{
			Name:                name4,
			Data:                data4,
			WantSchedulerConfig: cfg4,
		},
		{
			Name:                name5,
			Data:                data5,
			WantSchedulerConfig: cfg5,
		},
		{
			Name:                name1 + "_plus_tasks",
			Data:                data1 + tasksData,
			WantSchedulerConfig: cfg1,
		},
		{
			Name:                "tasks_plus_" + name1,
			Data:                tasksData + data1,
			WantSchedulerConfig: cfg1,
		},
		{
			Name:                name1 + "_plus_ignored",
			Data:                data1 + ignoredData,
			WantSchedulerConfig: cfg1,
		},
	} {
		t.Run(
			tc.Name,
			func(t *testing.T) { testLoadConfig(t, tc) },
		)
	}
}

func TestLoadTasksConfig(t *testing.T) {
	data := `
		tasks:
			telemetry:
				rate_hz: 25
				fields: ["roll", "pitch", "yaw"]
			blackbox:
				rate_hz: 100
	`
	wantTasksConfig := defaultTasksConfig()
	wantTasksConfig.Telemetry.RateHz = 25
	wantTasksConfig.Telemetry.Fields = []string{"roll", "pitch", "yaw"}
	wantTasksConfig.Blackbox.RateHz = 100
	tc := &LoadConfigTestCase{
		Name:                "tasks_config",
		Description:         "Test loading the simulator task configuration alongside the scheduler config",
		TasksConfig:         defaultTasksConfig(),
		Data:                data,
		WantSchedulerConfig: DefaultSchedulerConfig(),
		WantTasksConfig:     wantTasksConfig,
		WantErr:             nil,
	}
	t.Run(
		tc.Name,
		func(t *testing.T) { testLoadConfig(t, tc) },
	)
}
