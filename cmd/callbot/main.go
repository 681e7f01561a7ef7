// Command callbot runs the movie/series voice bot.
//
//	callbot call --msisdn 79990001122
//	callbot serve
//	callbot check start_main hangup_goodbye
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"voice-dialogue-go/internal/config"
	"voice-dialogue-go/internal/content"
	"voice-dialogue-go/internal/dialogue"
	"voice-dialogue-go/internal/logger"
	"voice-dialogue-go/internal/lookup"
	"voice-dialogue-go/internal/session"
)

func main() {
	_ = godotenv.Load() // loads .env

	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "callbot",
		Short:         "Voice dialogue bot that recommends movies and series",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("content", "", "content tables file (.yaml or .xlsx), overrides CONTENT_PATH")
	root.AddCommand(buildCallCmd(), buildServeCmd(), buildCheckCmd())
	return root
}

// app is what every command needs: config, tables and a logger.
type app struct {
	cfg    config.Config
	tables content.Tables
	log    *logger.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	cfg := config.Load()
	if path, _ := cmd.Flags().GetString("content"); path != "" {
		cfg.ContentPath = path
	}
	log := logger.New()
	log.WithField("service", "callbot").WithField("env", cfg.Environment).Debug("config loaded")

	tables, err := content.LoadOrDefault(cfg.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return &app{cfg: cfg, tables: tables, log: log}, nil
}

// searcher builds the lookup port for one call, reporting failures into
// that call's audit log.
func (a *app) searcher(audit lookup.Auditor) lookup.Searcher {
	if a.cfg.UseMockLookup {
		return lookup.Mock{}
	}
	key := a.cfg.LookupAPIKey
	if key == "" {
		key, _ = a.tables.Secret("X-API-KEY")
	}
	return lookup.NewClient(lookup.Options{
		BaseURL:        a.cfg.LookupBaseURL,
		APIKey:         key,
		Timeout:        a.cfg.LookupTimeout,
		MaxElapsedTime: a.cfg.LookupMaxRetry,
		Logger:         a.log,
		Auditor:        audit,
	})
}

// callSetup describes one call run by runCall.
type callSetup struct {
	msisdn   string
	source   session.UtteranceSource
	output   io.Writer
	testMode bool
	env      *session.Mutation
}

// runCall wires a controller, a voice and the bot together and runs one call.
func (a *app) runCall(ctx context.Context, s callSetup) (session.Dump, error) {
	ctl := session.NewController(session.Options{
		TestMode:     s.testMode,
		AuditLogPath: a.cfg.AuditLogPath,
		Tables:       a.tables,
		Logger:       a.log,
	})
	if s.env != nil {
		if err := ctl.Store().Mutate(*s.env); err != nil {
			return nil, err
		}
	}
	voice := ctl.NewVoice(s.source, s.output, a.cfg.RevealDelay)
	if a.cfg.ListenTimeout > 0 {
		voice.SetDefault(session.ParamListen, session.ListenConfig{Timeout: a.cfg.ListenTimeout})
	}
	bot := dialogue.New(ctl, voice, a.searcher(ctl), a.log)
	return ctl.Call(ctx, s.msisdn, bot.Entry(), bot.AfterCall), nil
}
