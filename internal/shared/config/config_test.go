package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis.Enabled should default to false")
	}
	if !cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled should default to true")
	}
	if len(cfg.Scheduler.ScheduleTimes) != 2 {
		t.Errorf("Scheduler.ScheduleTimes length = %d, want 2", len(cfg.Scheduler.ScheduleTimes))
	}
	if cfg.Telemetry.ServiceName != "centavo-api" {
		t.Errorf("Telemetry.ServiceName = %q, want centavo-api", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_InvalidDBPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid DB_PORT, got nil")
	}
}

func TestLoad_InvalidJobDelay(t *testing.T) {
	t.Setenv("SCHEDULER_JOB_DELAY", "soon")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for invalid SCHEDULER_JOB_DELAY, got nil")
	}
}

func TestLoad_SchedulerConfig(t *testing.T) {
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("SCHEDULER_WORKERS", "10")
	t.Setenv("SCHEDULER_RUN_ON_STARTUP", "true")
	t.Setenv("SCHEDULER_TIMES", "01:30, 13:30, 22:00")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Scheduler.Enabled != false {
		t.Error("Scheduler.Enabled should be false")
	}
	if cfg.Scheduler.WorkerCount != 10 {
		t.Errorf("Scheduler.WorkerCount = %d, want 10", cfg.Scheduler.WorkerCount)
	}
	if cfg.Scheduler.RunOnStartup != true {
		t.Error("Scheduler.RunOnStartup should be true")
	}
	if len(cfg.Scheduler.ScheduleTimes) != 3 {
		t.Errorf("Scheduler.ScheduleTimes length = %d, want 3", len(cfg.Scheduler.ScheduleTimes))
	}
	if cfg.Scheduler.ScheduleTimes[1] != "13:30" {
		t.Errorf("ScheduleTimes[1] = %q, want 13:30", cfg.Scheduler.ScheduleTimes[1])
	}
}

func TestLoad_SchedulerEnabledWithoutTimes(t *testing.T) {
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("SCHEDULER_TIMES", " , ")

	_, err := Load()
	if err == nil {
		t.Error("Load() expected error for scheduler enabled without times, got nil")
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value    string
		defVal   bool
		expected bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"invalid", true, true},   // returns default
		{"invalid", false, false}, // returns default
		{"", true, true},          // empty returns default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			key := "TEST_BOOL_ENV"
			if tt.value == "" {
				os.Unsetenv(key)
			} else {
				t.Setenv(key, tt.value)
			}

			got := getBoolEnv(key, tt.defVal)
			if got != tt.expected {
				t.Errorf("getBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defVal, got, tt.expected)
			}
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	got := cfg.ConnectionString()
	if got != expected {
		t.Errorf("ConnectionString() = %q, want %q", got, expected)
	}
}
