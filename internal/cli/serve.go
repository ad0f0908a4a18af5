package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tomaslau/focusonly/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local bridge for the browser extension",
	Long: `Serve starts the HTTP bridge the browser extension talks to.

  POST   /v1/events     tab lifecycle events (navigation, activation, close)
  POST   /v1/messages   popup requests (GET_STATUS, ANALYZE_PAGE, ...)
  GET    /v1/stream     websocket of STATUS_UPDATE messages
  GET    /v1/stats      usage counters (DELETE to reset)
  DELETE /v1/cache      clear cached verdicts
  GET    /healthz       liveness

Example:
  focusonly serve
  focusonly serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config: 127.0.0.1:7437)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub()
	a, err := newApp(ctx, hub)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireKey(ctx); err != nil {
		// Each analysis reports the missing key to its tab
		a.log.Warn().Err(err).Msg("no API key configured")
	}

	srv := server.New(server.Deps{
		Orchestrator: a.orch,
		Tabs:         a.tabs,
		Hub:          hub,
		Stats:        a.stats,
		Cache:        a.cache,
	}, a.cfg.Server, a.log)

	return srv.Run(ctx)
}
