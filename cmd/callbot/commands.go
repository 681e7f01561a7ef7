package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"voice-dialogue-go/internal/session"
)

func buildCallCmd() *cobra.Command {
	var msisdn string
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Run one interactive call on the console",
		Long: `Run one call with the caller typing on stdin.

Type "hangup" (or "h") to hang up. The final dump is printed as JSON.`,
		Example: `  callbot call --msisdn 79990001122
  callbot call --content content.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if msisdn == "" {
				msisdn = a.cfg.Msisdn
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			dump, err := a.runCall(ctx, callSetup{
				msisdn:   msisdn,
				source:   session.NewConsoleSource(cmd.InOrStdin(), out),
				output:   out,
				testMode: a.cfg.TestMode,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(dump)
		},
	}
	cmd.Flags().StringVar(&msisdn, "msisdn", "", "caller number, overrides MSISDN")
	return cmd
}

func buildServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health, metrics and scripted call simulation over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if port == 0 {
				port = a.cfg.Port
			}
			addr := fmt.Sprintf(":%d", port)
			srv := &http.Server{
				Addr:         addr,
				Handler:      a.routes(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			a.log.WithField("addr", addr).Info("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.WithError(err).Error("server terminated")
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port, overrides PORT")
	return cmd
}

func buildCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [prompt...]",
		Short: "List prompts that are missing or not text",
		Long: `Check the content tables for prompts. With no arguments every prompt the
dialogue uses is checked. Exits non-zero when any is missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = dialoguePrompts
			}
			missing := a.tables.HasRecords(args...)
			if len(missing) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all prompts present")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(missing, "\n"))
			return fmt.Errorf("%d prompt(s) missing", len(missing))
		},
	}
}

var dialoguePrompts = []string{
	"start_main",
	"unknown_command",
	"ask_movie_details",
	"ask_tv_series_details",
	"no_movies_found",
	"no_series_found",
	"hangup_goodbye",
}

// routes builds the serve mux; promhttp serves the default registry.
func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		a.log.WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/simulate", a.handleSimulate)
	return mux
}
