package main

import (
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/metrics"
	"github.com/gratefultolord/hr_requests_bot/internal/server"
)

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run the bot with long polling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.buildRuntime()
			if err != nil {
				return err
			}

			if _, err := rt.botAPI.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
				app.logger.Warn("cannot remove webhook", zap.Error(err))
			}

			if app.cfg.MetricsAddr != "" {
				srv := &http.Server{
					Addr: app.cfg.MetricsAddr,
					Handler: server.NewRouter(server.RouterDeps{
						Metrics: metrics.Handler(rt.registry),
						Logger:  app.logger.Named("http"),
					}),
				}

				go func() {
					if err := app.serve(srv); err != nil {
						app.logger.Error("metrics server stopped", zap.Error(err))
					}
				}()
			}

			u := tgbotapi.NewUpdate(0)
			u.Timeout = 60
			updates := rt.botAPI.GetUpdatesChan(u)

			go func() {
				<-app.ctx.Done()
				rt.botAPI.StopReceivingUpdates()
			}()

			app.logger.Info("polling for updates")
			rt.service.Start(app.ctx, updates)
			app.logger.Info("polling stopped")

			return nil
		},
	}
}

func webhookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "webhook",
		Short: "Run the bot behind a Telegram webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.WebhookURL == "" {
				return fmt.Errorf("WEBHOOK_URL is required for webhook mode")
			}

			rt, err := app.buildRuntime()
			if err != nil {
				return err
			}

			path := "/webhook/" + uuid.NewString()

			wh, err := tgbotapi.NewWebhook(strings.TrimRight(app.cfg.WebhookURL, "/") + path)
			if err != nil {
				return fmt.Errorf("invalid webhook url: %w", err)
			}

			if _, err := rt.botAPI.Request(wh); err != nil {
				return fmt.Errorf("cannot register webhook: %w", err)
			}

			srv := &http.Server{
				Addr: ":" + app.cfg.Port,
				Handler: server.NewRouter(server.RouterDeps{
					Updates:     rt.service,
					WebhookPath: path,
					Metrics:     metrics.Handler(rt.registry),
					Logger:      app.logger.Named("http"),
				}),
			}

			app.logger.Info("serving webhook", zap.String("port", app.cfg.Port))
			err = app.serve(srv)

			if _, derr := rt.botAPI.Request(tgbotapi.DeleteWebhookConfig{}); derr != nil {
				app.logger.Warn("cannot remove webhook", zap.Error(derr))
			}

			return err
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.RunMigrations(app.database); err != nil {
				return err
			}

			fmt.Println("Migrations applied.")

			return nil
		},
	}
}

func teamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "Seed the configured teams and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.prepareStore(); err != nil {
				return err
			}

			teams, err := db.NewTeamRepository(app.database.Conn).GetAll(app.ctx)
			if err != nil {
				return err
			}

			fmt.Printf("\n%d teams:\n\n", len(teams))
			for _, t := range teams {
				fmt.Printf("  %2d. %s\n", t.ID, t.Name)
			}
			fmt.Println()

			return nil
		},
	}
}
