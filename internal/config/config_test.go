package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/aimtune/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.WriterQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.SentimentMinSamples, convey.ShouldEqual, 5)
			convey.So(cfg.ConfidenceBaseline, convey.ShouldEqual, 0.6)
			convey.So(cfg.HistoryLimit, convey.ShouldEqual, 20)
			convey.So(cfg.MaxResults, convey.ShouldEqual, 0)
			convey.So(cfg.ReferenceDPI, convey.ShouldEqual, 440)
			convey.So(cfg.ReferenceDiagonalInches, convey.ShouldEqual, 6.67)
			convey.So(cfg.FeedbackHalfLife(), convey.ShouldEqual, 7*24*time.Hour)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":              func(c *config.Config) { c.Addr = "" },
			"unknown driver":          func(c *config.Config) { c.StoreDriver = "postgres" },
			"zero queue":              func(c *config.Config) { c.WriterQueueSize = 0 },
			"negative dedupe":         func(c *config.Config) { c.DedupeSize = -1 },
			"zero min samples":        func(c *config.Config) { c.SentimentMinSamples = 0 },
			"zero half-life":          func(c *config.Config) { c.FeedbackHalfLifeHours = 0 },
			"baseline above 1":        func(c *config.Config) { c.ConfidenceBaseline = 1.5 },
			"zero baseline":           func(c *config.Config) { c.ConfidenceBaseline = 0 },
			"history too large":       func(c *config.Config) { c.HistoryLimit = 501 },
			"negative max results":    func(c *config.Config) { c.MaxResults = -1 },
			"zero reference dpi":      func(c *config.Config) { c.ReferenceDPI = 0 },
			"negative reference diag": func(c *config.Config) { c.ReferenceDiagonalInches = -6 },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			convey.SoMsg(name, errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		}
	})
}
