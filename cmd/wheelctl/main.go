package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/logger"
	"github.com/spf13/cobra"

	"prizewheel/internal/client"
	"prizewheel/internal/config"
	"prizewheel/internal/controllers"
)

type options struct {
	baseURL string
	timeout time.Duration
	verbose bool
}

func (o *options) client() *client.Client {
	return client.New(o.baseURL, o.timeout)
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg, os.Stdin).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config, stdin io.Reader) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "wheelctl",
		Short: "Drive a prize wheel server from the terminal",
		Long: `wheelctl spins the wheel and edits its prizes against a running server.

Example:
  wheelctl wheel
  wheelctl spin --duration 2s
  wheelctl admin delete DETOUR --yes
  wheelctl simulate --rounds 100000`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init("wheelctl", opts.verbose, false, io.Discard)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", cfg.BaseURL, "Server base URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.ClientTimeout, "Per-request timeout")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", cfg.LogVerbose, "Log info messages to stderr")

	rootCmd.AddCommand(
		newWheelCmd(opts),
		newSpinCmd(opts, cfg.SpinDuration),
		newAdminCmd(opts, stdin),
		newSimulateCmd(opts),
	)
	return rootCmd
}

func newWheelCmd(opts *options) *cobra.Command {
	var scrape bool
	cmd := &cobra.Command{
		Use:   "wheel",
		Short: "Show the wheel built from the current prizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			var source controllers.PrizeSource = c
			if scrape {
				source = c.Scraper()
			}
			renderer := controllers.NewWheelRenderer(source)
			err := renderer.BuildWheel(cmd.Context())

			out := cmd.OutOrStdout()
			w := renderer.Wheel()
			for _, s := range w.Segments {
				fmt.Fprintf(out, "%-20s %6.2f  %7.2f-%7.2f deg  %s\n", s.Name, s.Probability, s.Start, s.End(), s.Color)
			}
			fmt.Fprintln(out, w.Gradient())
			if status := renderer.Status(); status.Text != "" {
				fmt.Fprintln(out, status.Text)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&scrape, "scrape", false, "Read prizes from the /admin page instead of /api/prizes")
	return cmd
}

func newSpinCmd(opts *options, defaultDuration time.Duration) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "spin",
		Short: "Spin the wheel and wait for the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			renderer := controllers.NewWheelRenderer(c)
			if err := renderer.BuildWheel(cmd.Context()); err != nil {
				logger.Warningf("Spinning with an empty wheel: %v", err)
			}

			out := cmd.OutOrStdout()
			controller := controllers.NewSpinController(renderer, c, duration)
			last := ""
			controller.OnChange(func(s controllers.SpinState) {
				if s.Status.Text != last {
					last = s.Status.Text
					fmt.Fprintln(out, s.Status.Text)
				}
			})
			return controller.Spin(cmd.Context())
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", defaultDuration, "How long the wheel turns before the result is shown")
	return cmd
}
