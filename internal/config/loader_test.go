package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/aimtune/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.WriterQueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("AIMTUNE_ADDR", ":8080")
			_ = os.Setenv("AIMTUNE_STORE_DRIVER", "sqlite")
			_ = os.Setenv("AIMTUNE_DATA_DIR", "/var/lib/aimtune")
			_ = os.Setenv("AIMTUNE_WRITER_QUEUE_SIZE", "64")
			_ = os.Setenv("AIMTUNE_FEEDBACK_HALF_LIFE_HOURS", "24")
			_ = os.Setenv("AIMTUNE_CONFIDENCE_BASELINE", "0.5")
			_ = os.Setenv("AIMTUNE_MAX_RESULTS", "200")
			_ = os.Setenv("AIMTUNE_REFERENCE_DPI", "400")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/var/lib/aimtune")
				convey.So(cfg.WriterQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.FeedbackHalfLife(), convey.ShouldEqual, 24*time.Hour)
				convey.So(cfg.ConfidenceBaseline, convey.ShouldEqual, 0.5)
				convey.So(cfg.MaxResults, convey.ShouldEqual, 200)
				convey.So(cfg.ReferenceDPI, convey.ShouldEqual, 400)
				convey.So(cfg.ReferenceDiagonalInches, convey.ShouldEqual, 6.67)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
log_level: debug
games_file: /etc/aimtune/games.yaml
sentiment_min_samples: 3
history_limit: 50
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AIMTUNE_CONFIG", tmpFile)
			_ = os.Setenv("AIMTUNE_HISTORY_LIMIT", "10") // overrides the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.GamesFile, convey.ShouldEqual, "/etc/aimtune/games.yaml")
				convey.So(cfg.SentimentMinSamples, convey.ShouldEqual, 3)
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 10)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000) // default
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AIMTUNE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("AIMTUNE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("AIMTUNE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown store driver", func() {
			_ = os.Setenv("AIMTUNE_STORE_DRIVER", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("AIMTUNE_WRITER_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(canceled)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"AIMTUNE_CONFIG",
		"AIMTUNE_ADDR",
		"AIMTUNE_STORE_DRIVER",
		"AIMTUNE_DATA_DIR",
		"AIMTUNE_WRITER_QUEUE_SIZE",
		"AIMTUNE_FEEDBACK_HALF_LIFE_HOURS",
		"AIMTUNE_CONFIDENCE_BASELINE",
		"AIMTUNE_HISTORY_LIMIT",
		"AIMTUNE_MAX_RESULTS",
		"AIMTUNE_REFERENCE_DPI",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "aimtune-config-*.yaml")
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
