package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/okian/cadence/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.StoreCapacity, convey.ShouldEqual, 100_000)
				convey.So(cfg.PitchMinHz, convey.ShouldEqual, 50)
				convey.So(cfg.PitchMaxHz, convey.ShouldEqual, 400)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			// Set environment variables
			_ = os.Setenv("CADENCE_LOG_LEVEL", "debug")
			_ = os.Setenv("CADENCE_ADDR", ":8080")
			_ = os.Setenv("CADENCE_QUEUE_SIZE", "5000")
			_ = os.Setenv("CADENCE_WORKER_COUNT", "16")
			_ = os.Setenv("CADENCE_DEDUPE_SIZE", "25000")
			_ = os.Setenv("CADENCE_STORE_CAPACITY", "40000")
			_ = os.Setenv("CADENCE_MAX_UPLOAD_BYTES", "1048576")
			_ = os.Setenv("CADENCE_PITCH_MIN_HZ", "60")
			_ = os.Setenv("CADENCE_PITCH_MAX_HZ", "350")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 5000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 25000)
				convey.So(cfg.StoreCapacity, convey.ShouldEqual, 40000)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, int64(1048576))
				convey.So(cfg.PitchMinHz, convey.ShouldEqual, 60)
				convey.So(cfg.PitchMaxHz, convey.ShouldEqual, 350)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			// Create a temporary YAML config file
			yamlContent := `
addr: ":9090"
queue_size: 3000
worker_count: 24
dedupe_size: 60000
pitch_min_hz: 70
pitch_max_hz: 300
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set the config file path
			_ = os.Setenv("CADENCE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 3000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 60000)
				convey.So(cfg.PitchMinHz, convey.ShouldEqual, 70)
				convey.So(cfg.PitchMaxHz, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			// Create a YAML config file
			yamlContent := `
addr: ":9090"
queue_size: 3000
worker_count: 24
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			// Set both file and environment variables
			_ = os.Setenv("CADENCE_CONFIG", tmpFile)
			_ = os.Setenv("CADENCE_ADDR", ":8080")      // This should override the file
			_ = os.Setenv("CADENCE_WORKER_COUNT", "32") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")   // Overridden by env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 3000) // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32) // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			// Create an invalid YAML file
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CADENCE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a missing file", func() {
			_ = os.Setenv("CADENCE_CONFIG", "/nonexistent/cadence.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the listen address is cleared", func() {
			_ = os.Setenv("CADENCE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should reject the config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the pitch bounds are inverted", func() {
			_ = os.Setenv("CADENCE_PITCH_MIN_HZ", "400")
			_ = os.Setenv("CADENCE_PITCH_MAX_HZ", "50")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should reject the config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the minimum pitch is non-positive", func() {
			_ = os.Setenv("CADENCE_PITCH_MIN_HZ", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should reject the config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// clearConfigEnvVars removes all CADENCE_ configuration variables set by tests.
func clearConfigEnvVars() {
	for _, key := range []string{
		"CADENCE_CONFIG",
		"CADENCE_LOG_LEVEL",
		"CADENCE_ADDR",
		"CADENCE_QUEUE_SIZE",
		"CADENCE_WORKER_COUNT",
		"CADENCE_DEDUPE_SIZE",
		"CADENCE_STORE_CAPACITY",
		"CADENCE_MAX_UPLOAD_BYTES",
		"CADENCE_PITCH_MIN_HZ",
		"CADENCE_PITCH_MAX_HZ",
	} {
		_ = os.Unsetenv(key)
	}
}

// createTempConfigFile writes content to a temp file and returns its path.
func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "cadence-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
