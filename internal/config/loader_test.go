package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/healthboard/internal/config"
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
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 15000)
				convey.So(cfg.CheckTimeoutMS, convey.ShouldEqual, 5000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HEALTHBOARD_ADDR", ":8080")
			_ = os.Setenv("HEALTHBOARD_POLL_INTERVAL_MS", "5000")
			_ = os.Setenv("HEALTHBOARD_CHECK_TIMEOUT_MS", "750")
			_ = os.Setenv("HEALTHBOARD_API_RATE_LIMIT", "2.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 5000)
				convey.So(cfg.CheckTimeoutMS, convey.ShouldEqual, 750)
				convey.So(cfg.APIRateLimit, convey.ShouldEqual, 2.5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
poll_interval_ms: 30000
time_format: "2006-01-02 15:04:05"
services:
  - name: srvA
    url: http://a.internal/health
  - name: srvB
    url: http://b.internal/health
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HEALTHBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 30000)
				convey.So(cfg.TimeFormat, convey.ShouldEqual, "2006-01-02 15:04:05")
				convey.So(cfg.Services, convey.ShouldResemble, []config.Target{
					{Name: "srvA", URL: "http://a.internal/health"},
					{Name: "srvB", URL: "http://b.internal/health"},
				})
			})

			convey.Convey("And defaults fill missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CheckTimeoutMS, convey.ShouldEqual, 5000)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\npoll_interval_ms: 30000\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HEALTHBOARD_CONFIG", tmpFile)
			_ = os.Setenv("HEALTHBOARD_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 30000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HEALTHBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("HEALTHBOARD_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("HEALTHBOARD_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When loading config with a zero poll interval", func() {
			_ = os.Setenv("HEALTHBOARD_POLL_INTERVAL_MS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "poll_interval_ms")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("HEALTHBOARD_POLL_INTERVAL_MS", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When services repeat a name", func() {
			tmpFile := createTempConfigFile(`
services:
  - name: db
    url: http://db-1/health
  - name: db
    url: http://db-2/health
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HEALTHBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, `duplicate service name "db"`)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			_ = os.Setenv("HEALTHBOARD_LOG_FORMAT", "yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation names the field", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "log_format")
			})
		})

		convey.Convey("When the log format is json", func() {
			_ = os.Setenv("HEALTHBOARD_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it is accepted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When a service has no url", func() {
			tmpFile := createTempConfigFile("services:\n  - name: cache\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HEALTHBOARD_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "url must not be empty")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"HEALTHBOARD_CONFIG",
		"HEALTHBOARD_ADDR",
		"HEALTHBOARD_LOG_FORMAT",
		"HEALTHBOARD_POLL_INTERVAL_MS",
		"HEALTHBOARD_CHECK_TIMEOUT_MS",
		"HEALTHBOARD_API_RATE_LIMIT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "healthboard-config-*.yaml")
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
