package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/adminbot"
	"github.com/gratefultolord/hr_requests_bot/internal/bot"
	"github.com/gratefultolord/hr_requests_bot/internal/config"
	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/files"
	"github.com/gratefultolord/hr_requests_bot/internal/logging"
	"github.com/gratefultolord/hr_requests_bot/internal/metrics"
	"github.com/gratefultolord/hr_requests_bot/internal/notify"
	"github.com/gratefultolord/hr_requests_bot/internal/session"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
)

// App holds what every command needs.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	database *db.DB
	ctx      context.Context
	stop     context.CancelFunc
}

var app *App

func main() {
	rootCmd := &cobra.Command{
		Use:   "hrbot",
		Short: "HR requests Telegram bot",
		Long:  `Collects apology, leave, proposal, problem and feedback requests from volunteers and forwards them to the HR officer for a decision.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(pollCmd())
	rootCmd.AddCommand(webhookCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(teamsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads configuration and opens the store.
func initApp() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogEnv, cfg.LogDir)
	if err != nil {
		return err
	}

	database, err := db.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app = &App{
		cfg:      cfg,
		logger:   logger,
		database: database,
		ctx:      ctx,
		stop:     stop,
	}

	logger.Info("application initialized",
		zap.String("db_driver", cfg.DBDriver),
		zap.Int64("admin_chat_id", cfg.AdminChatID),
	)

	return nil
}

func (a *App) close() {
	if a == nil {
		return
	}

	a.stop()

	if err := a.database.Close(); err != nil {
		a.logger.Warn("cannot close database", zap.Error(err))
	}

	_ = a.logger.Sync()
}

// prepareStore applies migrations and seeds the configured teams.
func (a *App) prepareStore() error {
	if err := db.RunMigrations(a.database); err != nil {
		return err
	}

	teams, err := config.LoadTeams(a.cfg.TeamsFile)
	if err != nil {
		return err
	}

	return db.NewTeamRepository(a.database.Conn).Seed(a.ctx, teams)
}

type botRuntime struct {
	botAPI   *tgbotapi.BotAPI
	service  *bot.BotService
	registry *prometheus.Registry
}

// buildRuntime wires the Telegram client, repositories and handlers.
func (a *App) buildRuntime() (*botRuntime, error) {
	if err := a.prepareStore(); err != nil {
		return nil, err
	}

	botAPI, err := tgbotapi.NewBotAPI(a.cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("cannot create telegram bot: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	api := telegram.NewThrottledAPI(a.ctx, botAPI, a.cfg.SendRate)
	notifier := notify.NewNotifier(api, recorder)

	fileService, err := files.NewFileService(botAPI, &http.Client{Timeout: 30 * time.Second}, a.cfg.EvidenceDir)
	if err != nil {
		return nil, err
	}

	conn := a.database.Conn
	teamRepo := db.NewTeamRepository(conn)
	requestRepo := db.NewRequestRepository(conn)

	admin := adminbot.New(
		api,
		teamRepo,
		db.NewVolunteerRepository(conn),
		requestRepo,
		notifier,
		recorder,
		a.cfg,
		a.logger.Named("admin"),
	)

	dispatcher := bot.NewDispatcher(
		db.NewCounterRepository(conn),
		requestRepo,
		notifier,
		recorder,
		a.cfg.AdminChatID,
		a.logger.Named("dispatch"),
	)

	service := bot.New(
		api,
		session.NewManager(),
		teamRepo,
		dispatcher,
		fileService,
		admin,
		recorder,
		a.cfg,
		a.logger.Named("bot"),
	)

	if err := service.RegisterCommands(); err != nil {
		a.logger.Warn("cannot register bot commands", zap.Error(err))
	}

	a.logger.Info("bot authorized", zap.String("username", botAPI.Self.UserName))

	return &botRuntime{
		botAPI:   botAPI,
		service:  service,
		registry: registry,
	}, nil
}

// serve runs srv until the app context ends.
func (a *App) serve(srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-a.ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
