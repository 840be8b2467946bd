package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	app "github.com/okian/healthboard/internal/app"
	"github.com/okian/healthboard/internal/config"
	"github.com/okian/healthboard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)

		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("HEALTHBOARD_ADDR", ":8181")
			_ = os.Setenv("HEALTHBOARD_POLL_INTERVAL_MS", "2000")
			defer func() {
				_ = os.Unsetenv("HEALTHBOARD_ADDR")
				_ = os.Unsetenv("HEALTHBOARD_POLL_INTERVAL_MS")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the service options follow it", func() {
				svc := app.New(appOptions(cfg, logger.Get())...)
				convey.So(svc.PollInterval(), convey.ShouldEqual, 2*time.Second)
				convey.So(svc.PollURL(), convey.ShouldEqual, "http://127.0.0.1:8181/api/health")
			})
		})

		convey.Convey("When the full mux is assembled", func() {
			cfg := config.New()
			svc := app.New(appOptions(cfg, logger.Get())...)
			h := newHTTPServer(context.Background(), cfg, svc, logger.Get()).Handler

			convey.Convey("Then every route answers", func() {
				for path, code := range map[string]int{
					"/api/health":           http.StatusOK,
					"/dashboard":            http.StatusOK,
					"/dashboard/table":      http.StatusOK,
					"/healthz":              http.StatusOK,
					"/metrics":              http.StatusOK,
					"/static/dashboard.css": http.StatusOK,
					"/openapi.yaml":         http.StatusOK,
					"/api-docs":             http.StatusOK,
					"/":                     http.StatusFound,
				} {
					w := httptest.NewRecorder()
					h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
					convey.So(w.Code, convey.ShouldEqual, code)
				}
			})
		})

		convey.Convey("When the server starts on a bound listener", func() {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"status":"UP"}`))
			}))
			defer upstream.Close()

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			convey.So(err, convey.ShouldBeNil)

			cfg := config.New()
			cfg.Addr = ln.Addr().String()
			cfg.PollIntervalMS = int(time.Hour / time.Millisecond)
			cfg.Services = []config.Target{{Name: "auth", URL: upstream.URL}}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			svc := app.New(appOptions(cfg, logger.Get())...)
			srv := newHTTPServer(ctx, cfg, svc, logger.Get())
			serveErr, err := start(ctx, ln, srv, svc, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer func() {
				svc.Stop()
				_ = srv.Close()
			}()

			convey.Convey("Then the startup tick renders without waiting an interval", func() {
				deadline := time.Now().Add(3 * time.Second)
				for svc.ListView().Len() == 0 && time.Now().Before(deadline) {
					time.Sleep(10 * time.Millisecond)
				}
				convey.So(svc.ListView().Len(), convey.ShouldEqual, 1)
				entries := svc.ListView().Entries()
				convey.So(entries[0].Service, convey.ShouldEqual, "auth")
				convey.So(entries[0].Class, convey.ShouldEqual, "healthy")
				convey.So(len(serveErr), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When system metrics are refreshed", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
