package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/dailyquest/internal/api"
	"github.com/abhisek/dailyquest/internal/refresh"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quest API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		withRefresh, _ := cmd.Flags().GetBool("refresh")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.HTTPAddr
		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			addr = v
		}
		if a.cfg.LogMode == "prod" || a.cfg.LogMode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return api.Serve(gctx, addr, api.SetupRouter(a.service, a.log), a.log)
		})
		if withRefresh {
			g.Go(func() error { return newRunner(a).Run(gctx) })
		}
		return g.Wait()
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reconcile stale users on a fixed interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := newRunner(a)
		if once {
			st, err := r.RunOnce(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("checked %d, refreshed %d, skipped %d, failed %d\n", st.Checked, st.Refreshed, st.Skipped, st.Failed)
			return nil
		}
		return r.Run(ctx)
	},
}

func newRunner(a *app) *refresh.Runner {
	return refresh.New(a.service, a.progress, a.lister, a.progress, refresh.Config{
		Interval:    a.cfg.Refresh.Interval,
		Concurrency: a.cfg.Refresh.Concurrency,
		Throttle:    a.cfg.Refresh.Throttle,
	}, a.log)
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides DAILYQUEST_HTTP_ADDR)")
	serveCmd.Flags().Bool("refresh", true, "Run the background refresher alongside the server")

	watchCmd.Flags().Bool("once", false, "Run a single pass and exit")
}

