package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/aimtune/internal/config"
	"github.com/okian/aimtune/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestRun(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When the configuration is valid", func() {
			_ = os.Setenv("AIMTUNE_ADDR", "127.0.0.1:0")
			_ = os.Setenv("AIMTUNE_LOG_LEVEL", "verbose")
			defer func() {
				_ = os.Unsetenv("AIMTUNE_ADDR")
				_ = os.Unsetenv("AIMTUNE_LOG_LEVEL")
				_ = logger.SetLevelString("info")
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			err := run(ctx)

			convey.Convey("Then it serves until the context ends", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			_ = os.Setenv("AIMTUNE_STORE_DRIVER", "postgres")
			defer func() { _ = os.Unsetenv("AIMTUNE_STORE_DRIVER") }()

			err := run(context.Background())

			convey.Convey("Then it fails with a config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the address cannot be bound", func() {
			_ = os.Setenv("AIMTUNE_ADDR", "256.0.0.1:99999")
			defer func() { _ = os.Unsetenv("AIMTUNE_ADDR") }()

			err := run(context.Background())

			convey.Convey("Then it fails before serving", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
