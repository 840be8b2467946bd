package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/healthboard/internal/adapters/poller"
	. "github.com/smartystreets/goconvey/convey"
)

// syncBuffer is a bytes.Buffer safe for the poll goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand(t *testing.T) {
	Convey("Given a status endpoint", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"auth": {"status": "HEALTHY"}, "db": {"status": "DOWN"}}`))
		}))
		defer srv.Close()

		var out, errOut bytes.Buffer
		root := NewRootCmd(Options{Out: &out, Err: &errOut})

		Convey("When watching once", func() {
			root.SetArgs([]string{"watch", "--url", srv.URL, "--once", "--clear=false"})
			err := root.ExecuteContext(context.Background())

			Convey("Then the table is printed in server order", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
				So(lines, ShouldHaveLength, 3)
				So(lines[1], ShouldStartWith, "auth")
				So(lines[2], ShouldStartWith, "db")
				So(lines[2], ShouldContainSubstring, "!!")
			})
		})

		Convey("When output is not a terminal", func() {
			root.SetArgs([]string{"watch", "--url", srv.URL, "--once"})
			So(root.ExecuteContext(context.Background()), ShouldBeNil)

			Convey("Then no clear sequence is written", func() {
				So(out.String(), ShouldNotContainSubstring, clearScreen)
				So(out.String(), ShouldStartWith, "Service")
			})
		})

		Convey("When clearing is requested", func() {
			root.SetArgs([]string{"watch", "--url", srv.URL, "--once", "--clear"})
			So(root.ExecuteContext(context.Background()), ShouldBeNil)

			Convey("Then output starts with the clear sequence", func() {
				So(out.String(), ShouldStartWith, clearScreen)
			})
		})
	})

	Convey("Given an endpoint returning garbage", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		var out, errOut bytes.Buffer
		root := NewRootCmd(Options{Out: &out, Err: &errOut})
		root.SetArgs([]string{"watch", "--url", srv.URL, "--once"})

		Convey("When watching once", func() {
			err := root.ExecuteContext(context.Background())

			Convey("Then the decode failure is returned and nothing is printed", func() {
				So(errors.Is(err, poller.ErrDecode), ShouldBeTrue)
				So(out.Len(), ShouldEqual, 0)
				So(errOut.String(), ShouldContainSubstring, "poll failed")
			})
		})
	})

	Convey("Given an endpoint that fails before it recovers", t, func() {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"auth": {"status": "HEALTHY"}}`))
		}))
		defer srv.Close()

		var out, errOut syncBuffer
		root := NewRootCmd(Options{Out: &out, Err: &errOut})
		root.SetArgs([]string{"watch", "--url", srv.URL, "--interval", "20ms"})

		Convey("When watching until the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()
			err := root.ExecuteContext(ctx)

			Convey("Then the failure is logged and a later tick prints the table", func() {
				So(err, ShouldBeNil)
				So(atomic.LoadInt32(&calls), ShouldBeGreaterThanOrEqualTo, 2)
				So(errOut.String(), ShouldContainSubstring, "poll failed")
				So(out.String(), ShouldContainSubstring, "auth")
				So(out.String(), ShouldContainSubstring, "HEALTHY")
			})
		})
	})

	Convey("Given an invalid interval", t, func() {
		root := NewRootCmd(Options{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}})
		root.SetArgs([]string{"watch", "--interval", "0s"})

		Convey("Then the command fails", func() {
			So(root.ExecuteContext(context.Background()), ShouldNotBeNil)
		})
	})
}
