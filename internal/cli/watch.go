// Package cli holds the cobra commands of the watch tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/okian/healthboard/internal/adapters/poller"
	"github.com/okian/healthboard/internal/adapters/render"
	"github.com/okian/healthboard/internal/domain/status"
	"github.com/okian/healthboard/pkg/logger"
)

// ANSI sequence that clears the screen and homes the cursor.
const clearScreen = "\033[H\033[2J"

// Options holds CLI-level configuration.
type Options struct {
	Out io.Writer
	Err io.Writer
}

type watchFlags struct {
	url        string
	interval   time.Duration
	timeout    time.Duration
	timeFormat string
	once       bool
	clear      bool
	logLevel   string
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "healthboard",
		Short:         "Health dashboard tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newWatchCommand(opts))
	return root
}

func newWatchCommand(opts Options) *cobra.Command {
	var f watchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll a /api/health endpoint and render it in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := opts.Out
			if out == nil {
				out = cmd.OutOrStdout()
			}
			errOut := opts.Err
			if errOut == nil {
				errOut = cmd.ErrOrStderr()
			}
			if !cmd.Flags().Changed("clear") {
				f.clear = isTerminal(out)
			}
			return runWatch(cmd.Context(), f, out, errOut)
		},
	}

	cmd.Flags().StringVar(&f.url, "url", "http://127.0.0.1:9080/api/health", "status endpoint to poll")
	cmd.Flags().DurationVar(&f.interval, "interval", poller.DefaultInterval, "time between polls")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "per-poll request timeout (0 disables)")
	cmd.Flags().StringVar(&f.timeFormat, "time-format", render.DefaultTimeFormat, "layout of the render timestamp")
	cmd.Flags().BoolVar(&f.once, "once", false, "poll a single time and exit")
	cmd.Flags().BoolVar(&f.clear, "clear", false, "clear the screen before each render (default: when stdout is a terminal)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	return cmd
}

func runWatch(ctx context.Context, f watchFlags, out, errOut io.Writer) error {
	if f.interval <= 0 {
		return fmt.Errorf("--interval must be > 0")
	}
	if err := logger.Init(logger.WithWriter(errOut)); err != nil {
		return err
	}
	if err := logger.SetLevelString(f.logLevel); err != nil {
		return err
	}

	view := render.NewTextView(render.WithTimeFormat(f.timeFormat))
	p := poller.New(poller.NewHTTPFetcher(f.url, &http.Client{}),
		poller.WithInterval(f.interval),
		poller.WithTimeout(f.timeout),
		poller.WithRenderers(view),
		poller.WithLogger(logger.Named("watch")),
		poller.WithOnRender(func(status.Map) {
			if f.clear {
				_, _ = io.WriteString(out, clearScreen)
			}
			_ = view.WriteText(out)
		}),
	)

	if f.once {
		return p.PollOnce(ctx)
	}
	p.Run(ctx)
	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
